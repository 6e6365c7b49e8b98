package middleware

import (
	"net/http"
	"strings"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"

	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"
const SessionIDKey = "session_id"

// LoadUser 解析 Authorization: Bearer 并把用户放进 context。
// token 无效时不拦截，只是匿名访问；拦截交给 AuthRequired。
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		claims, err := services.GetTokenService().ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		if result := db.DB.First(&user, claims.UserID); result.Error == nil {
			c.Set(CheckUserKey, &user)
			c.Set(SessionIDKey, claims.SessionID)

			// Fetch Unread Notification Count
			c.Set(UnreadCountKey, services.UnreadCount(user.ID))
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "登录后才能操作"},
			})
			return
		}
		c.Next()
	}
}

// AdminRequired 平台管理员专用路由
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(CheckUserKey)
		if !exists || !u.(*models.User).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "FORBIDDEN", "message": "需要管理员权限"},
			})
			return
		}
		c.Next()
	}
}
