package handlers

import (
	"io"
	"net/http"

	"jishi/internal/models"
	"jishi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
)

// WebhookHandler 支付回调入口。
// 依赖以函数字段注入，端点自身的约定（400/200/去重）可以脱离数据库验证。
type WebhookHandler struct {
	verify  func(payload []byte, sigHeader string) (stripe.Event, error)
	record  func(event stripe.Event) (*models.WebhookEvent, bool, error)
	process func(record *models.WebhookEvent)
}

func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{
		verify: func(payload []byte, sigHeader string) (stripe.Event, error) {
			return services.GetStripeService().VerifyEvent(payload, sigHeader)
		},
		record:  services.RecordWebhookEvent,
		process: services.ProcessWebhookEvent,
	}
}

// 请求体上限 64KB，Stripe 事件远小于这个值
const maxWebhookBody = 64 * 1024

// Stripe POST /webhooks/stripe - 支付回调入口。
// 签名不过返回 400；签名通过后无论处理成败都回 200，
// 重复投递按事件 ID 去重直接确认，避免 Stripe 无限重发。
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		Fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "无法读取请求体")
		return
	}

	event, err := h.verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "签名校验失败")
		return
	}

	record, isNew, err := h.record(event)
	if err != nil {
		// 落库失败让 Stripe 重试
		Fail(c, http.StatusInternalServerError, "INTERNAL", "事件记录失败")
		return
	}
	if !isNew {
		// 重复投递，直接确认
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	h.process(record)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// StripeLegacy /stripe/webhook - 旧地址 308 永久跳转到新地址。
// 308 保留请求方法和 body，Stripe 会跟随并重签。
func (h *WebhookHandler) StripeLegacy(c *gin.Context) {
	c.Redirect(http.StatusPermanentRedirect, "/webhooks/stripe")
}
