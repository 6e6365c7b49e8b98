package models

import (
	"time"
)

// 惩罚类型：ban 封禁（禁止一切写操作），mute 禁言（禁止发内容，不影响浏览和下单）
const (
	PunishBan  = "ban"
	PunishMute = "mute"
)

// Ban 租户内的封禁/禁言记录。
// 解除后的历史行保留，同一 (tenant, user, kind) 最多一条生效行由服务层保证。
type Ban struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TenantID    uint       `gorm:"not null;index:idx_tenant_user" json:"tenant_id"`
	UserID      uint       `gorm:"not null;index:idx_tenant_user" json:"user_id"` // 被惩罚者
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Kind        string     `gorm:"size:8;not null" json:"kind"`
	Reason      string     `gorm:"size:200" json:"reason"`
	CreatedByID uint       `gorm:"not null" json:"created_by_id"` // 操作的版主
	IsPermanent bool       `gorm:"default:false" json:"is_permanent"`
	ExpiresAt   *time.Time `json:"expires_at"` // 临时惩罚的到期时间
	RevokedAt   *time.Time `json:"revoked_at"` // 手动解除
	CreatedAt   time.Time  `json:"created_at"`
}
