package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"

	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 回调事件的落库与处理。
// Stripe 是 at-least-once 投递：先按事件 ID 插一行做幂等去重，再处理；
// 处理失败只记录在行上，HTTP 层照样回 200，避免无意义的重发风暴。

// RecordWebhookEvent 落库事件。重复投递返回 isNew=false。
func RecordWebhookEvent(event stripe.Event) (*models.WebhookEvent, bool, error) {
	record := models.WebhookEvent{
		StripeID: event.ID,
		Type:     string(event.Type),
		Payload:  string(event.Data.Raw),
		Status:   models.WebhookReceived,
	}

	if err := db.DB.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &record, true, nil
}

// ProcessWebhookEvent 分发处理并更新事件行状态
func ProcessWebhookEvent(record *models.WebhookEvent) {
	var err error
	status := models.WebhookProcessed

	switch record.Type {
	case "checkout.session.completed":
		err = handleCheckoutCompleted(record.Payload)
	case "checkout.session.expired":
		err = handleCheckoutExpired(record.Payload)
	case "payment_intent.payment_failed":
		err = handlePaymentFailed(record.Payload)
	default:
		status = models.WebhookSkipped
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": &now,
	}
	if err != nil {
		log.Printf("Webhook %s (%s) processing failed: %v", record.StripeID, record.Type, err)
		updates["status"] = models.WebhookFailed
		updates["last_error"] = err.Error()
	}
	if dbErr := db.DB.Model(record).Updates(updates).Error; dbErr != nil {
		log.Printf("Failed to update webhook event %s: %v", record.StripeID, dbErr)
	}
}

func handleCheckoutCompleted(payload string) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal([]byte(payload), &cs); err != nil {
		return fmt.Errorf("bad checkout.session payload: %w", err)
	}

	var order models.Order
	if err := db.DB.Preload("Listing").Preload("Buyer").
		Where("stripe_session = ?", cs.ID).First(&order).Error; err != nil {
		return fmt.Errorf("order for session %s not found: %w", cs.ID, err)
	}

	// 重复投递：订单已是终态就什么都不做
	if order.Status != models.OrderPending {
		return nil
	}

	intentID := ""
	if cs.PaymentIntent != nil {
		intentID = cs.PaymentIntent.ID
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":        models.OrderPaid,
			"stripe_intent": intentID,
		}).Error; err != nil {
			return err
		}

		// 扣减库存，售罄时下架
		if err := tx.Model(&models.Listing{}).Where("id = ?", order.ListingID).
			UpdateColumn("stock", stockAfterSale(order.Quantity)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Listing{}).
			Where("id = ? AND stock <= 0 AND status = ?", order.ListingID, models.ListingActive).
			Update("status", models.ListingSoldOut).Error
	})
	if err != nil {
		return err
	}

	// 买卖双方各发一条订单通知
	NotifyAsync(order.BuyerID, nil, models.NotificationTypeOrderPaid, "order", order.ID,
		fmt.Sprintf("订单 %s 支付成功：%s", order.Oid, order.Listing.Title))
	NotifyAsync(order.SellerID, &order.BuyerID, models.NotificationTypeOrderPaid, "order", order.ID,
		fmt.Sprintf("您的商品《%s》售出 %d 件", order.Listing.Title, order.Quantity))

	// 卖家信誉
	AddReputationAsync(order.SellerID, RepListingSold, ActionListingSold)

	// 邮件回执
	NewMailService().SendOrderReceipt(order.Buyer.Email, order.Listing.Title, order.AmountCents, order.Currency, order.Oid)

	return nil
}

// stockAfterSale 扣库存的更新表达式。
// 钳位到 0：两笔并发支付同时扣同一商品时库存不会被扣成负数。
func stockAfterSale(quantity int) clause.Expr {
	return gorm.Expr("GREATEST(stock - ?, 0)", quantity)
}

func handleCheckoutExpired(payload string) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal([]byte(payload), &cs); err != nil {
		return fmt.Errorf("bad checkout.session payload: %w", err)
	}

	return db.DB.Model(&models.Order{}).
		Where("stripe_session = ? AND status = ?", cs.ID, models.OrderPending).
		Update("status", models.OrderExpired).Error
}

func handlePaymentFailed(payload string) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal([]byte(payload), &pi); err != nil {
		return fmt.Errorf("bad payment_intent payload: %w", err)
	}

	var order models.Order
	if err := db.DB.Where("stripe_intent = ?", pi.ID).First(&order).Error; err != nil {
		// 失败事件可能先于 completed 到达且我们还没存 intent ID，跳过即可
		return nil
	}
	if order.Status != models.OrderPending {
		return nil
	}

	if err := db.DB.Model(&order).Update("status", models.OrderFailed).Error; err != nil {
		return err
	}

	NotifyAsync(order.BuyerID, nil, models.NotificationTypeOrderFailed, "order", order.ID,
		fmt.Sprintf("订单 %s 支付失败，请重新下单", order.Oid))
	return nil
}
