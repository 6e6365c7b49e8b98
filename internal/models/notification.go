package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReply       NotificationType = "reply"          // 评论被回复
	NotificationTypeCommentItem NotificationType = "comment_item"   // 帖子/商品收到评论
	NotificationTypeMilestone   NotificationType = "milestone"      // 点赞数跨过里程碑
	NotificationTypeOrderPaid   NotificationType = "order_paid"     // 订单支付成功
	NotificationTypeOrderFailed NotificationType = "order_failed"   // 订单支付失败
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeReport      NotificationType = "report" // 举报通知
)

type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User       User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID    *uint            `gorm:"index" json:"actor_id"` // Sender
	Actor      User             `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	Type       NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	TargetType string           `gorm:"size:16" json:"target_type"` // thread/comment/listing/order
	TargetID   uint             `gorm:"index" json:"target_id"`
	Message    string           `gorm:"type:text" json:"message"`
	IsRead     bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}
