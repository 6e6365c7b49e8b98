package services

import (
	"testing"
	"time"

	"jishi/internal/models"
)

func TestPunishmentActive(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name string
		ban  *models.Ban
		want bool
	}{
		{"nil 记录", nil, false},
		{"永久封禁", &models.Ban{IsPermanent: true}, true},
		{"未到期的临时封禁", &models.Ban{ExpiresAt: &future}, true},
		{"已到期的临时封禁", &models.Ban{ExpiresAt: &past}, false},
		{"非永久且无到期时间", &models.Ban{}, false},
		{"已手动解除的永久封禁", &models.Ban{IsPermanent: true, RevokedAt: &past}, false},
		{"已手动解除的临时封禁", &models.Ban{ExpiresAt: &future, RevokedAt: &now}, false},
	}
	for _, c := range cases {
		if got := PunishmentActive(c.ban, now); got != c.want {
			t.Errorf("%s: PunishmentActive = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPunishmentActiveBoundary(t *testing.T) {
	// 恰好到期的瞬间按失效处理
	now := time.Now()
	ban := &models.Ban{ExpiresAt: &now}
	if PunishmentActive(ban, now) {
		t.Error("到期时刻应视为失效")
	}
}

func TestCanPunish(t *testing.T) {
	// 操作者角色必须严格高于目标
	if !CanPunish(models.RoleOwner, models.RoleModerator) {
		t.Error("owner 应能惩罚 moderator")
	}
	if !CanPunish(models.RoleModerator, models.RoleMember) {
		t.Error("moderator 应能惩罚 member")
	}
	if CanPunish(models.RoleModerator, models.RoleModerator) {
		t.Error("同级不能互相惩罚")
	}
	if CanPunish(models.RoleMember, models.RoleOwner) {
		t.Error("下级不能惩罚上级")
	}
	// 非成员（空角色）可以被任何有角色的人惩罚
	if !CanPunish(models.RoleModerator, "") {
		t.Error("moderator 应能惩罚非成员")
	}
}
