package models

import (
	"time"
)

// 举报处理状态
const (
	ReportOpen      = "open"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

type Report struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TenantID     uint       `gorm:"not null;index" json:"tenant_id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"` // Reporter
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TargetType   string     `gorm:"size:16;not null" json:"target_type"` // thread/comment/listing
	TargetID     uint       `gorm:"not null;index" json:"target_id"`
	Reason       string     `gorm:"size:200;not null" json:"reason"`
	Status       string     `gorm:"size:16;default:'open';index" json:"status"`
	ResolvedByID *uint      `json:"resolved_by_id"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
