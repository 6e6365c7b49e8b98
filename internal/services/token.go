package services

import (
	"errors"
	"log"
	"os"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService 签发和校验 access/refresh 令牌对。
// access token 是短时 JWT，refresh token 落库（sessions 表），可单独吊销。
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

var tokenService *TokenService

// GetTokenService 获取单例
func GetTokenService() *TokenService {
	if tokenService == nil {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "secret_key_change_me"
			log.Println("JWT_SECRET not set, using insecure default")
		}
		tokenService = &TokenService{
			secret:     []byte(secret),
			accessTTL:  15 * time.Minute,
			refreshTTL: 30 * 24 * time.Hour,
		}
	}
	return tokenService
}

// AccessClaims JWT 负载
type AccessClaims struct {
	UserID    uint   `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	SessionID    string    `json:"session_id"`
}

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired or revoked")
)

// SignAccess 签发 access token
func (s *TokenService) SignAccess(userID uint, sessionID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.accessTTL)
	claims := AccessClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "jishi",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return token, expiresAt, err
}

// ParseAccess 校验 access token，返回负载
func (s *TokenService) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueSession 登录成功后创建会话并返回令牌对
func (s *TokenService) IssueSession(userID uint, userAgent, ip string) (*TokenPair, error) {
	refresh, err := utils.GenerateToken(32)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := models.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		RefreshToken: refresh,
		UserAgent:    userAgent,
		IP:           ip,
		ExpiresAt:    now.Add(s.refreshTTL),
	}
	if err := db.DB.Create(&session).Error; err != nil {
		return nil, err
	}

	access, expiresAt, err := s.SignAccess(userID, session.ID, now)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		SessionID:    session.ID,
	}, nil
}

// Refresh 用 refresh token 换新令牌对（旋转：旧 token 作废）
func (s *TokenService) Refresh(refreshToken, userAgent, ip string) (*TokenPair, error) {
	var session models.Session
	if err := db.DB.Where("refresh_token = ?", refreshToken).First(&session).Error; err != nil {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	if !session.Valid(now) {
		return nil, ErrSessionExpired
	}

	newRefresh, err := utils.GenerateToken(32)
	if err != nil {
		return nil, err
	}

	// 旋转 refresh token，延长会话
	updates := map[string]interface{}{
		"refresh_token": newRefresh,
		"expires_at":    now.Add(s.refreshTTL),
		"user_agent":    userAgent,
		"ip":            ip,
	}
	if err := db.DB.Model(&session).Updates(updates).Error; err != nil {
		return nil, err
	}

	access, expiresAt, err := s.SignAccess(session.UserID, session.ID, now)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresAt:    expiresAt,
		SessionID:    session.ID,
	}, nil
}

// RevokeSession 吊销指定会话（登出/踢设备）
func (s *TokenService) RevokeSession(userID uint, sessionID string) error {
	now := time.Now()
	result := db.DB.Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}

// ListSessions 列出用户的活跃会话（设备列表）
func (s *TokenService) ListSessions(userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := db.DB.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}
