package models

import (
	"time"
)

// Tenant 租户 - 一个店铺+社区空间，所有内容都挂在租户下
type Tenant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:32;not null" json:"slug"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Currency    string    `gorm:"size:3;default:'usd';not null" json:"currency"` // ISO 货币代码
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// 租户内角色，等级从高到低
const (
	RoleOwner     = "owner"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// RoleRank 角色等级，数值越大权限越高
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleModerator:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// Membership 用户在某租户内的身份
type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_tenant" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TenantID  uint      `gorm:"not null;index;uniqueIndex:idx_user_tenant" json:"tenant_id"`
	Tenant    Tenant    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Role      string    `gorm:"size:20;default:'member';not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
