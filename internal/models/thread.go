package models

import (
	"time"
)

// Thread 帖子 - 租户论坛里的一个讨论串
type Thread struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Tid        string   `gorm:"uniqueIndex;size:8;not null" json:"tid"`
	TenantID   uint     `gorm:"not null;index" json:"tenant_id"`
	Tenant     Tenant   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     uint     `gorm:"not null;index" json:"user_id"`
	User       User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CategoryID uint     `gorm:"not null;index;default:1" json:"category_id"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Title      string   `gorm:"not null" json:"title"`
	URL        string   `json:"url"` // Optional
	Content    string   `gorm:"type:text" json:"content"`
	IsPinned   bool     `gorm:"default:false" json:"is_pinned"`
	IsRemoved  bool     `gorm:"default:false;index" json:"is_removed"` // 管理下架（软删除）

	// 冗余计数，反应切换时按 ±1 维护
	UpvoteCount   int `gorm:"default:0" json:"upvote_count"`
	DownvoteCount int `gorm:"default:0" json:"downvote_count"`
	BookmarkCount int `gorm:"default:0" json:"bookmark_count"`
	CommentCount  int `gorm:"default:0" json:"comment_count"`

	// 排序用分数，由后台 worker 重算
	WilsonScore      float64 `gorm:"default:0;index" json:"wilson_score"`
	ControversyScore float64 `gorm:"default:0;index" json:"controversy_score"`
	HotScore         float64 `gorm:"default:0;index" json:"hot_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
