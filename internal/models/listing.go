package models

import (
	"time"
)

// 商品状态
const (
	ListingActive   = "active"
	ListingSoldOut  = "sold_out"
	ListingArchived = "archived"
)

// Listing 商品 - 租户市集里的在售条目
type Listing struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Lid         string `gorm:"uniqueIndex;size:8;not null" json:"lid"`
	TenantID    uint   `gorm:"not null;index" json:"tenant_id"`
	Tenant      Tenant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint   `gorm:"not null;index" json:"user_id"` // 卖家
	User        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"` // markdown，展示时渲染并消毒
	PriceCents  int64  `gorm:"not null" json:"price_cents"`
	Currency    string `gorm:"size:3;not null" json:"currency"`
	Stock       int    `gorm:"default:0" json:"stock"`
	Status      string `gorm:"size:16;default:'active';index" json:"status"`
	IsRemoved   bool   `gorm:"default:false;index" json:"is_removed"`

	UpvoteCount   int `gorm:"default:0" json:"upvote_count"`
	DownvoteCount int `gorm:"default:0" json:"downvote_count"`
	BookmarkCount int `gorm:"default:0" json:"bookmark_count"`
	CommentCount  int `gorm:"default:0" json:"comment_count"`

	WilsonScore float64 `gorm:"default:0;index" json:"wilson_score"`
	HotScore    float64 `gorm:"default:0;index" json:"hot_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
