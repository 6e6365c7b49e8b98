package models

import (
	"time"
)

// 反应类型：up/down 互斥，bookmark 独立
const (
	ReactionUp       = "up"
	ReactionDown     = "down"
	ReactionBookmark = "bookmark"
)

// 反应目标类型
const (
	TargetThread  = "thread"
	TargetComment = "comment"
	TargetListing = "listing"
)

// Reaction 一行代表用户对某目标的一个反应槽位。
// (user, target, kind) 唯一；up/down 的互斥由服务层在事务里保证。
type Reaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_user_target_kind" json:"user_id"`
	TargetType string    `gorm:"size:16;not null;uniqueIndex:idx_user_target_kind" json:"target_type"`
	TargetID   uint      `gorm:"not null;index;uniqueIndex:idx_user_target_kind" json:"target_id"`
	Kind       string    `gorm:"size:16;not null;uniqueIndex:idx_user_target_kind" json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// Exclusive up 和 down 共用一个槽位
func (r *Reaction) Exclusive() bool {
	return r.Kind == ReactionUp || r.Kind == ReactionDown
}
