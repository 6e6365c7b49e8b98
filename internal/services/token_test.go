package services

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService(t *testing.T) *TokenService {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret")
	tokenService = nil // 重置单例以加载测试密钥
	return GetTokenService()
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := testTokenService(t)

	token, expiresAt, err := s.SignAccess(42, "sess-abc", time.Now())
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := s.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "sess-abc", claims.SessionID)
	assert.Equal(t, "jishi", claims.Issuer)
}

func TestParseAccessRejectsGarbage(t *testing.T) {
	s := testTokenService(t)

	for _, bad := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		_, err := s.ParseAccess(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, "token: %q", bad)
	}
}

func TestParseAccessRejectsExpired(t *testing.T) {
	s := testTokenService(t)

	// 一小时前签发的 15 分钟令牌
	token, _, err := s.SignAccess(1, "sess", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = s.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessRejectsWrongKey(t *testing.T) {
	s := testTokenService(t)
	token, _, err := s.SignAccess(1, "sess", time.Now())
	require.NoError(t, err)

	// 换密钥后旧令牌失效
	os.Setenv("JWT_SECRET", "another-secret")
	tokenService = nil
	other := GetTokenService()

	_, err = other.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
