package models

import (
	"time"
)

// Webhook 事件处理状态
const (
	WebhookReceived  = "received"
	WebhookProcessed = "processed"
	WebhookFailed    = "failed"
	WebhookSkipped   = "skipped" // 未订阅的事件类型
)

// WebhookEvent 支付回调事件 - 按 Stripe 事件 ID 去重，容忍 at-least-once 投递
type WebhookEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StripeID    string     `gorm:"uniqueIndex;size:64;not null" json:"stripe_id"`
	Type        string     `gorm:"size:64;not null;index" json:"type"`
	Payload     string     `gorm:"type:text" json:"-"` // 原始 JSON，失败后重放用
	Status      string     `gorm:"size:16;default:'received';index" json:"status"`
	LastError   string     `gorm:"type:text" json:"last_error"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
