package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

var googleOauthConfig *oauth2.Config

// InitGoogleOAuth 初始化 Google OAuth 配置
func InitGoogleOAuth() {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}

	googleOauthConfig = &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  siteURL + "/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo Google 用户信息结构
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleLogin 发起 Google OAuth 登录
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := utils.GenerateToken(32)
	if err != nil {
		FailFrom(c, err)
		return
	}

	// 将 state 存储到 session 中,用于验证回调
	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	url := googleOauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback 处理 Google OAuth 回调，成功后带令牌跳回前端
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState := session.Get("oauth_state")

	// 验证 state 参数
	if savedState == nil || c.Query("state") != savedState.(string) {
		FailValidation(c, "无效的状态参数")
		return
	}

	// 清除 state
	session.Delete("oauth_state")
	session.Save()

	code := c.Query("code")
	if code == "" {
		FailValidation(c, "未获取到授权码")
		return
	}

	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		Fail(c, http.StatusBadGateway, "INTERNAL", "交换授权码失败")
		return
	}

	info, err := fetchGoogleUserInfo(token)
	if err != nil {
		Fail(c, http.StatusBadGateway, "INTERNAL", "获取用户信息失败")
		return
	}
	if !info.VerifiedEmail {
		FailValidation(c, "Google 邮箱未验证")
		return
	}

	user, err := findOrCreateGoogleUser(info)
	if err != nil {
		FailFrom(c, err)
		return
	}

	pair, err := services.GetTokenService().IssueSession(user.ID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		FailFrom(c, err)
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		// 没配前端地址就直接回 JSON（本地调试）
		c.JSON(http.StatusOK, gin.H{"user": user, "tokens": pair})
		return
	}

	// 令牌放 fragment，不经过服务器日志
	redirect := fmt.Sprintf("%s/auth/callback#access_token=%s&refresh_token=%s",
		frontend, url.QueryEscape(pair.AccessToken), url.QueryEscape(pair.RefreshToken))
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

func fetchGoogleUserInfo(token *oauth2.Token) (*GoogleUserInfo, error) {
	client := googleOauthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// findOrCreateGoogleUser 按 Google ID 找用户；找不到再按邮箱绑定；都没有就新建
func findOrCreateGoogleUser(info *GoogleUserInfo) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("google_id = ?", info.ID).First(&user).Error; err == nil {
		return &user, nil
	}

	// 已有同邮箱账号，绑定 Google 登录
	if err := db.DB.Where("email = ?", info.Email).First(&user).Error; err == nil {
		updates := map[string]interface{}{
			"google_id":    info.ID,
			"google_email": info.Email,
			"is_activated": true, // Google 已验证过邮箱
		}
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		Username:    info.Name,
		Email:       info.Email,
		Password:    "oauth_no_password_" + utils.RandPublicID(16),
		GoogleID:    info.ID,
		GoogleEmail: info.Email,
		IsActivated: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
