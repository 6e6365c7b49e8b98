package models

import (
	"time"
)

// Category 板块 - 租户内的内容分类
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;index;uniqueIndex:idx_tenant_category" json:"tenant_id"`
	Tenant      Tenant    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name        string    `gorm:"not null;uniqueIndex:idx_tenant_category" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
