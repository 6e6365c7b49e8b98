package models

import (
	"time"
)

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"not null" json:"username"` // Username can be modified
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	Password       string `gorm:"not null" json:"-"`                           // Hash
	Avatar         string `gorm:"default:🛍️" json:"avatar"`                    // emoji 头像
	Bio            string `gorm:"size:200" json:"bio"`                         // 个人简介
	Reputation     int    `gorm:"default:0" json:"reputation"`                 // 信誉分
	Role           string `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	GoogleID       string `gorm:"index" json:"google_id"`                      // Google OAuth ID
	GoogleEmail    string `gorm:"index" json:"google_email"`                   // Google 邮箱
	IsActivated    bool   `gorm:"default:false" json:"is_activated"`           // 是否已激活
	VerifyCode     string `gorm:"size:20" json:"-"`                            // 验证码(激活/重置通用)
	StripeCustomer string `gorm:"size:64;index" json:"-"`                      // Stripe Customer ID

	// 通知偏好开关，fan-out 规则在自排除之后查这里
	NotifyReplies   bool `gorm:"default:true" json:"notify_replies"`
	NotifyReactions bool `gorm:"default:true" json:"notify_reactions"` // 里程碑/点赞类
	NotifyOrders    bool `gorm:"default:true" json:"notify_orders"`
	NotifyMarketing bool `gorm:"default:false" json:"notify_marketing"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}

// IsAdmin 平台管理员，绕过租户角色检查
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
