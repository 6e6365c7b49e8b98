package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func testStripeService(t *testing.T) *StripeService {
	t.Helper()
	os.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	os.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	stripeService = nil // 重置单例以加载测试配置
	return GetStripeService()
}

// signPayload 按 Stripe 的签名方案构造 Stripe-Signature 头：
// v1 = HMAC-SHA256(secret, "<timestamp>.<payload>")
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEventValidSignature(t *testing.T) {
	s := testStripeService(t)

	payload := []byte(`{"id":"evt_test_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1"}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	event, err := s.VerifyEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_test_1", event.ID)
	assert.Equal(t, "checkout.session.completed", string(event.Type))
}

func TestVerifyEventBadSignature(t *testing.T) {
	s := testStripeService(t)

	payload := []byte(`{"id":"evt_test_2","type":"checkout.session.completed"}`)

	// 错误密钥签出来的头
	header := signPayload(payload, "whsec_wrong", time.Now())
	_, err := s.VerifyEvent(payload, header)
	assert.Error(t, err)

	// 签名对但 payload 被篡改
	header = signPayload(payload, testWebhookSecret, time.Now())
	_, err = s.VerifyEvent([]byte(`{"id":"evt_tampered"}`), header)
	assert.Error(t, err)
}

func TestVerifyEventStaleTimestamp(t *testing.T) {
	s := testStripeService(t)

	// 超过容忍窗口的旧时间戳会被拒绝，防重放
	payload := []byte(`{"id":"evt_test_3","type":"checkout.session.expired"}`)
	header := signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	_, err := s.VerifyEvent(payload, header)
	assert.Error(t, err)
}

func TestVerifyEventDisabled(t *testing.T) {
	os.Unsetenv("STRIPE_SECRET_KEY")
	os.Unsetenv("STRIPE_WEBHOOK_SECRET")
	stripeService = nil
	s := GetStripeService()
	defer func() { stripeService = nil }()

	_, err := s.VerifyEvent([]byte(`{}`), "t=1,v1=abc")
	assert.ErrorIs(t, err, ErrStripeDisabled)
}
