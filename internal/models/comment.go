package models

import (
	"time"
)

type Comment struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Cid       string   `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	TenantID  uint     `gorm:"not null;index" json:"tenant_id"`
	ThreadID  uint     `gorm:"not null;index" json:"thread_id"`
	Thread    Thread   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint     `gorm:"not null;index" json:"user_id"`
	User      User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID  *uint    `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent    *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string   `gorm:"type:text;not null" json:"content"`
	IsDeleted bool     `gorm:"default:false" json:"is_deleted"` // 软删除：保留树结构，内容置空

	UpvoteCount   int     `gorm:"default:0" json:"upvote_count"`
	DownvoteCount int     `gorm:"default:0" json:"downvote_count"`
	WilsonScore   float64 `gorm:"default:0" json:"wilson_score"`

	CreatedAt time.Time `json:"created_at"`

	// 非数据库字段，组装评论树时填充
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}
