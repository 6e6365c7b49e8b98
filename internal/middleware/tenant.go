package middleware

import (
	"net/http"

	"jishi/internal/models"
	"jishi/internal/services"

	"github.com/gin-gonic/gin"
)

const TenantKey = "tenant"
const RoleKey = "tenant_role"

// ResolveTenant 把 /t/:slug 解析成租户并放进 context。
// 所有租户内容路由都挂在这个中间件后面，天然做了租户隔离。
func ResolveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		tenant, err := services.FindTenantBySlug(slug)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": "NOT_FOUND", "message": "社区不存在"},
			})
			return
		}
		c.Set(TenantKey, tenant)

		// 登录用户顺带解析租户内角色
		if u, exists := c.Get(CheckUserKey); exists {
			c.Set(RoleKey, services.EffectiveRole(tenant.ID, u.(*models.User)))
		}
		c.Next()
	}
}

// MemberRequired 需要租户成员身份
func MemberRequired() gin.HandlerFunc {
	return requireRank(models.RoleMember, "需要加入社区后操作")
}

// ModeratorRequired 需要版主及以上
func ModeratorRequired() gin.HandlerFunc {
	return requireRank(models.RoleModerator, "需要版主权限")
}

// OwnerRequired 需要社区所有者
func OwnerRequired() gin.HandlerFunc {
	return requireRank(models.RoleOwner, "需要社区所有者权限")
}

func requireRank(minRole, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		if models.RoleRank(role) < models.RoleRank(minRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "FORBIDDEN", "message": message},
			})
			return
		}
		c.Next()
	}
}
