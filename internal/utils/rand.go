package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const idLetters = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandPublicID 生成短公开 ID（URL 里用，不暴露自增主键）
func RandPublicID(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(idLetters))))
		if err != nil {
			// crypto/rand 基本不会失败，失败直接退化为固定字符
			b[i] = idLetters[0]
			continue
		}
		b[i] = idLetters[idx.Int64()]
	}
	return string(b)
}

// GenerateRandomCode 生成 n 位数字验证码
func GenerateRandomCode(n int) string {
	code := ""
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			d = big.NewInt(0)
		}
		code += fmt.Sprintf("%d", d.Int64())
	}
	return code
}

// GenerateToken 生成 URL 安全的随机令牌（refresh token、OAuth state）
func GenerateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
