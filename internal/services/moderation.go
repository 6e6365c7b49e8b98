package services

import (
	"errors"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
)

// 封禁/禁言的判定和执行。
// 判定是纯谓词：读路径绝不回写过期记录，过期行的清理交给独立任务。

var (
	ErrBanned       = errors.New("user is banned in this tenant")
	ErrMuted        = errors.New("user is muted in this tenant")
	ErrRoleTooLow   = errors.New("insufficient role for this action")
	ErrSelfPunish   = errors.New("cannot punish yourself")
	ErrAlreadyExist = errors.New("an active punishment of this kind already exists")
)

// PunishmentActive 惩罚记录当前是否生效。
// 永久惩罚一直生效；临时惩罚到期即失效；被手动解除的不生效。
func PunishmentActive(ban *models.Ban, now time.Time) bool {
	if ban == nil {
		return false
	}
	if ban.RevokedAt != nil {
		return false
	}
	if ban.IsPermanent {
		return true
	}
	if ban.ExpiresAt == nil {
		// 非永久却没有到期时间，按失效处理
		return false
	}
	return now.Before(*ban.ExpiresAt)
}

// GateStatus 用户在租户内的惩罚状态快照
type GateStatus struct {
	Banned bool
	Muted  bool
}

// CheckGate 查询用户在租户内的生效惩罚。只读，不修改过期行。
func CheckGate(tenantID, userID uint) GateStatus {
	var bans []models.Ban
	db.DB.Where("tenant_id = ? AND user_id = ? AND revoked_at IS NULL", tenantID, userID).Find(&bans)

	now := time.Now()
	status := GateStatus{}
	for i := range bans {
		if !PunishmentActive(&bans[i], now) {
			continue
		}
		switch bans[i].Kind {
		case models.PunishBan:
			status.Banned = true
		case models.PunishMute:
			status.Muted = true
		}
	}
	return status
}

// GateContentWrite 内容写入口的统一闸门：封禁和禁言都拦
func GateContentWrite(tenantID, userID uint) error {
	status := CheckGate(tenantID, userID)
	if status.Banned {
		return ErrBanned
	}
	if status.Muted {
		return ErrMuted
	}
	return nil
}

// GatePurchase 下单闸门：只拦封禁，禁言用户仍可购买
func GatePurchase(tenantID, userID uint) error {
	if CheckGate(tenantID, userID).Banned {
		return ErrBanned
	}
	return nil
}

// CanPunish 角色等级检查：操作者必须严格高于目标
func CanPunish(actorRole, targetRole string) bool {
	return models.RoleRank(actorRole) > models.RoleRank(targetRole)
}

// Punish 对用户施加封禁/禁言。days<=0 且 permanent=false 视为参数错误。
func Punish(tenantID, targetID, actorID uint, kind, reason string, permanent bool, days int) (*models.Ban, error) {
	if targetID == actorID {
		return nil, ErrSelfPunish
	}
	if !permanent && days <= 0 {
		return nil, errors.New("temporary punishment requires a duration")
	}

	// 同类生效惩罚不重复叠加
	var existing models.Ban
	if err := db.DB.Where("tenant_id = ? AND user_id = ? AND kind = ? AND revoked_at IS NULL", tenantID, targetID, kind).
		First(&existing).Error; err == nil {
		if PunishmentActive(&existing, time.Now()) {
			return nil, ErrAlreadyExist
		}
		// 过期的旧行让位给新行
		now := time.Now()
		db.DB.Model(&existing).Update("revoked_at", &now)
	}

	ban := models.Ban{
		TenantID:    tenantID,
		UserID:      targetID,
		Kind:        kind,
		Reason:      reason,
		CreatedByID: actorID,
		IsPermanent: permanent,
	}
	if !permanent {
		expires := time.Now().AddDate(0, 0, days)
		ban.ExpiresAt = &expires
	}

	if err := db.DB.Create(&ban).Error; err != nil {
		return nil, err
	}

	// 系统通知被惩罚者
	label := "禁言"
	if kind == models.PunishBan {
		label = "封禁"
	}
	NotifyAsync(targetID, nil, models.NotificationTypeSystem, "", 0,
		"您在本社区被"+label+"，原因: "+reason)

	return &ban, nil
}

// Revoke 解除惩罚
func Revoke(tenantID, targetID uint, kind string) error {
	now := time.Now()
	result := db.DB.Model(&models.Ban{}).
		Where("tenant_id = ? AND user_id = ? AND kind = ? AND revoked_at IS NULL", tenantID, targetID, kind).
		Update("revoked_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("no active punishment found")
	}
	return nil
}

// ListActivePunishments 租户内生效中的惩罚
func ListActivePunishments(tenantID uint) []models.Ban {
	var bans []models.Ban
	db.DB.Preload("User").
		Where("tenant_id = ? AND revoked_at IS NULL", tenantID).
		Order("created_at DESC").
		Find(&bans)

	now := time.Now()
	active := make([]models.Ban, 0, len(bans))
	for i := range bans {
		if PunishmentActive(&bans[i], now) {
			active = append(active, bans[i])
		}
	}
	return active
}
