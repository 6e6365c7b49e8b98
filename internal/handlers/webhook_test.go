package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"jishi/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func webhookRouter(h *WebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/stripe", h.Stripe)
	r.Any("/stripe/webhook", h.StripeLegacy)
	return r
}

func postWebhook(r *gin.Engine, payload []byte, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Stripe 签名头：t=<ts>,v1=hex(hmac-sha256(secret, "<ts>.<payload>"))
func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// 签名不过必须 400，不能让 Stripe 以为投递成功
func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	os.Setenv("STRIPE_SECRET_KEY", "sk_test_handler")
	os.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_handler_test")
	r := webhookRouter(NewWebhookHandler())

	payload := []byte(`{"id":"evt_test_1","type":"checkout.session.completed"}`)

	// 用错误密钥签名
	w := postWebhook(r, payload, signWebhookPayload(payload, "whsec_wrong", time.Now()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")

	// 完全没有签名头
	w = postWebhook(r, payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 签名正确但 payload 被篡改
	sig := signWebhookPayload(payload, "whsec_handler_test", time.Now())
	w = postWebhook(r, []byte(`{"id":"evt_test_1","type":"account.updated"}`), sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// 重复投递按事件 ID 直接确认，不再进处理流程
func TestStripeWebhookDuplicateAckedImmediately(t *testing.T) {
	processed := false
	h := &WebhookHandler{
		verify: func(payload []byte, sigHeader string) (stripe.Event, error) {
			return stripe.Event{ID: "evt_dup", Type: "checkout.session.completed"}, nil
		},
		record: func(event stripe.Event) (*models.WebhookEvent, bool, error) {
			return nil, false, nil
		},
		process: func(record *models.WebhookEvent) { processed = true },
	}
	w := postWebhook(webhookRouter(h), []byte(`{}`), "t=1,v1=ignored")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"duplicate":true`)
	assert.False(t, processed, "重复事件不应再次处理")
}

// 处理失败只记录在事件行上，响应仍是 200
func TestStripeWebhookAcksEvenWhenProcessingFails(t *testing.T) {
	var handled *models.WebhookEvent
	h := &WebhookHandler{
		verify: func(payload []byte, sigHeader string) (stripe.Event, error) {
			return stripe.Event{ID: "evt_new", Type: "checkout.session.completed"}, nil
		},
		record: func(event stripe.Event) (*models.WebhookEvent, bool, error) {
			return &models.WebhookEvent{StripeID: event.ID, Type: string(event.Type), Status: models.WebhookReceived}, true, nil
		},
		process: func(record *models.WebhookEvent) {
			handled = record
			record.Status = models.WebhookFailed
			record.LastError = "order for session not found"
		},
	}
	w := postWebhook(webhookRouter(h), []byte(`{}`), "t=1,v1=ignored")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, handled)
	assert.Equal(t, models.WebhookFailed, handled.Status)
}

// 事件落库失败是我们这边的问题，回 500 让 Stripe 重试
func TestStripeWebhookRecordFailure(t *testing.T) {
	h := &WebhookHandler{
		verify: func(payload []byte, sigHeader string) (stripe.Event, error) {
			return stripe.Event{ID: "evt_x"}, nil
		},
		record: func(event stripe.Event) (*models.WebhookEvent, bool, error) {
			return nil, false, errors.New("db down")
		},
		process: func(record *models.WebhookEvent) { t.Fatal("落库失败不应进入处理") },
	}
	w := postWebhook(webhookRouter(h), []byte(`{}`), "t=1,v1=ignored")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL")
}

func TestStripeLegacyRedirect(t *testing.T) {
	r := webhookRouter(NewWebhookHandler())

	// 308 保留方法和 body，POST 过来的回调会被原样重发到新地址
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		req := httptest.NewRequest(method, "/stripe/webhook", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusPermanentRedirect, w.Code, method)
		assert.Equal(t, "/webhooks/stripe", w.Header().Get("Location"), method)
	}
}
