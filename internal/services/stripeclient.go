package services

import (
	"errors"
	"fmt"
	"log"
	"os"

	"jishi/internal/models"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeService 封装对支付方的出站调用和回调签名校验
type StripeService struct {
	webhookSecret string
	siteURL       string
	Enabled       bool
}

var stripeService *StripeService

var ErrStripeDisabled = errors.New("stripe is not configured")

// GetStripeService 获取单例
func GetStripeService() *StripeService {
	if stripeService == nil {
		key := os.Getenv("STRIPE_SECRET_KEY")
		webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		siteURL := os.Getenv("SITE_URL")
		if siteURL == "" {
			siteURL = "http://localhost:8080"
		}

		enabled := key != "" && webhookSecret != ""
		if !enabled {
			log.Println("⚠️ StripeService disabled: Missing STRIPE_SECRET_KEY / STRIPE_WEBHOOK_SECRET.")
		}
		stripe.Key = key

		stripeService = &StripeService{
			webhookSecret: webhookSecret,
			siteURL:       siteURL,
			Enabled:       enabled,
		}
	}
	return stripeService
}

// CreateCheckout 为订单创建 Checkout Session，返回 session ID 和跳转 URL
func (s *StripeService) CreateCheckout(order *models.Order, listing *models.Listing, buyer *models.User) (string, string, error) {
	if !s.Enabled {
		return "", "", ErrStripeDisabled
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(order.Oid),
		CustomerEmail:     stripe.String(buyer.Email),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/orders/%s?state=success", s.siteURL, order.Oid)),
		CancelURL:         stripe.String(fmt.Sprintf("%s/orders/%s?state=cancel", s.siteURL, order.Oid)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(int64(order.Quantity)),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(order.Currency),
					UnitAmount: stripe.Int64(listing.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(listing.Title),
					},
				},
			},
		},
		Metadata: map[string]string{
			"order_oid": order.Oid,
		},
	}

	result, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return result.ID, result.URL, nil
}

// VerifyEvent 校验 Stripe-Signature 并解析事件。签名不过直接报错，绝不处理。
func (s *StripeService) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if !s.Enabled {
		return stripe.Event{}, ErrStripeDisabled
	}
	return webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}
