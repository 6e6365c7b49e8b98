package handlers

import (
	"errors"
	"net/http"

	"jishi/internal/middleware"
	"jishi/internal/models"
	"jishi/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 统一错误返回格式：{"error": {"code": "...", "message": "..."}}
// code 是机器可读的稳定标识，message 给人看。

func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

// FailValidation 参数校验失败
func FailValidation(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "VALIDATION_FAILED", message)
}

// FailNotFound 资源不存在
func FailNotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, "NOT_FOUND", message)
}

// FailFrom 把 service 层错误翻译成错误码
func FailFrom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBanned):
		Fail(c, http.StatusForbidden, "BANNED", "您已被本社区封禁")
	case errors.Is(err, services.ErrMuted):
		Fail(c, http.StatusForbidden, "MUTED", "您已被禁言，暂时无法发布内容")
	case errors.Is(err, services.ErrRoleTooLow):
		Fail(c, http.StatusForbidden, "FORBIDDEN", "权限不足")
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrSessionExpired):
		Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "登录已失效，请重新登录")
	case errors.Is(err, services.ErrTargetGone), errors.Is(err, gorm.ErrRecordNotFound):
		FailNotFound(c, "内容不存在或已被删除")
	case errors.Is(err, services.ErrBadTarget), errors.Is(err, services.ErrBadKind),
		errors.Is(err, services.ErrNoBookmark), errors.Is(err, services.ErrSelfPunish):
		FailValidation(c, err.Error())
	case errors.Is(err, services.ErrAlreadyExist), errors.Is(err, gorm.ErrDuplicatedKey):
		Fail(c, http.StatusConflict, "DUPLICATE", "重复的操作或记录已存在")
	case errors.Is(err, services.ErrStripeDisabled):
		Fail(c, http.StatusServiceUnavailable, "PAYMENT_FAILED", "支付功能暂未开通")
	default:
		Fail(c, http.StatusInternalServerError, "INTERNAL", "服务器开小差了，请稍后再试")
	}
}

// CurrentUser 从 context 取当前登录用户，AuthRequired 之后一定存在
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(middleware.CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}

// CurrentTenant 从 context 取当前租户，ResolveTenant 之后一定存在
func CurrentTenant(c *gin.Context) *models.Tenant {
	if t, exists := c.Get(middleware.TenantKey); exists {
		return t.(*models.Tenant)
	}
	return nil
}

// CurrentRole 当前用户在当前租户内的角色，匿名/非成员为空串
func CurrentRole(c *gin.Context) string {
	return c.GetString(middleware.RoleKey)
}
