package handlers

import (
	"net/http"
	"strings"

	"jishi/internal/db"
	"jishi/internal/middleware"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// Signup 注册：落库未激活用户并发激活码邮件
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "用户名、邮箱、密码不能为空且格式正确")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	db.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		Fail(c, http.StatusConflict, "DUPLICATE", "该邮箱已被注册")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		FailFrom(c, err)
		return
	}

	user := models.User{
		Username:   req.Username,
		Email:      req.Email,
		Password:   hash,
		VerifyCode: utils.GenerateRandomCode(6),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		FailFrom(c, err)
		return
	}

	services.NewMailService().SendWelcomeEmail(user.Email, user.VerifyCode)

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

type activateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// Activate 用邮件里的验证码激活账号
func (h *AuthHandler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "邮箱和验证码不能为空")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		FailNotFound(c, "用户不存在")
		return
	}
	if user.IsActivated {
		c.JSON(http.StatusOK, gin.H{"activated": true})
		return
	}
	if user.VerifyCode == "" || user.VerifyCode != req.Code {
		FailValidation(c, "验证码不正确")
		return
	}

	if err := db.DB.Model(&user).Updates(map[string]interface{}{
		"is_activated": true,
		"verify_code":  "",
	}).Error; err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activated": true})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /auth/session - 邮箱密码换令牌对
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "邮箱和密码不能为空")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "邮箱或密码不正确")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "邮箱或密码不正确")
		return
	}
	if !user.IsActivated {
		Fail(c, http.StatusForbidden, "FORBIDDEN", "账号未激活，请先查收激活邮件")
		return
	}

	pair, err := services.GetTokenService().IssueSession(user.ID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		FailFrom(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": pair})
}

// Whoami GET /auth/session - 当前登录态
func (h *AuthHandler) Whoami(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "未登录")
		return
	}

	unread := int64(0)
	if count, ok := c.Get(middleware.UnreadCountKey); ok {
		unread = count.(int64)
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "unread_count": unread})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh POST /auth/refresh - 旋转 refresh token 换新令牌对
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "refresh_token 不能为空")
		return
	}

	pair, err := services.GetTokenService().Refresh(req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// Logout POST /auth/logout - 吊销当前会话
func (h *AuthHandler) Logout(c *gin.Context) {
	user := CurrentUser(c)
	sessionID := c.GetString(middleware.SessionIDKey)

	if err := services.GetTokenService().RevokeSession(user.ID, sessionID); err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListSessions GET /auth/sessions - 活跃设备列表
func (h *AuthHandler) ListSessions(c *gin.Context) {
	user := CurrentUser(c)
	sessions, err := services.GetTokenService().ListSessions(user.ID)
	if err != nil {
		FailFrom(c, err)
		return
	}

	current := c.GetString(middleware.SessionIDKey)
	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, gin.H{
			"id":         s.ID,
			"user_agent": s.UserAgent,
			"ip":         s.IP,
			"created_at": s.CreatedAt,
			"expires_at": s.ExpiresAt,
			"current":    s.ID == current,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// RevokeSession DELETE /auth/sessions/:id - 踢掉指定设备
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	user := CurrentUser(c)
	if err := services.GetTokenService().RevokeSession(user.ID, c.Param("id")); err != nil {
		FailNotFound(c, "会话不存在或已失效")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type updateProfileRequest struct {
	Username        *string `json:"username"`
	Avatar          *string `json:"avatar"`
	Bio             *string `json:"bio"`
	NotifyReplies   *bool   `json:"notify_replies"`
	NotifyReactions *bool   `json:"notify_reactions"`
	NotifyOrders    *bool   `json:"notify_orders"`
	NotifyMarketing *bool   `json:"notify_marketing"`
}

// UpdateProfile PUT /me - 资料和通知偏好，只改传了的字段
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := CurrentUser(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "请求体格式不正确")
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if len(name) < 2 || len(name) > 30 {
			FailValidation(c, "用户名长度需在 2-30 之间")
			return
		}
		updates["username"] = name
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.NotifyReplies != nil {
		updates["notify_replies"] = *req.NotifyReplies
	}
	if req.NotifyReactions != nil {
		updates["notify_reactions"] = *req.NotifyReactions
	}
	if req.NotifyOrders != nil {
		updates["notify_orders"] = *req.NotifyOrders
	}
	if req.NotifyMarketing != nil {
		updates["notify_marketing"] = *req.NotifyMarketing
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
