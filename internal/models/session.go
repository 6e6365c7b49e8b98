package models

import (
	"time"
)

// Session 登录会话 - 每个 refresh token 一行，可单独吊销
type Session struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"` // uuid
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	RefreshToken string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	UserAgent    string     `gorm:"size:255" json:"user_agent"`
	IP           string     `gorm:"size:45" json:"ip"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Valid 会话是否仍可用于刷新
func (s *Session) Valid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
