package models

import (
	"time"
)

// 订单状态
const (
	OrderPending = "pending"
	OrderPaid    = "paid"
	OrderFailed  = "failed"
	OrderExpired = "expired"
)

// Order 订单 - 一次 Stripe Checkout 的记录
type Order struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Oid           string  `gorm:"uniqueIndex;size:8;not null" json:"oid"`
	TenantID      uint    `gorm:"not null;index" json:"tenant_id"`
	ListingID     uint    `gorm:"not null;index" json:"listing_id"`
	Listing       Listing `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"listing"`
	BuyerID       uint    `gorm:"not null;index" json:"buyer_id"`
	Buyer         User    `gorm:"foreignKey:BuyerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"buyer"`
	SellerID      uint    `gorm:"not null;index" json:"seller_id"`
	Quantity      int     `gorm:"default:1;not null" json:"quantity"`
	AmountCents   int64   `gorm:"not null" json:"amount_cents"`
	Currency      string  `gorm:"size:3;not null" json:"currency"`
	Status        string  `gorm:"size:16;default:'pending';index" json:"status"`
	StripeSession string  `gorm:"size:128;uniqueIndex" json:"-"` // Checkout Session ID
	StripeIntent  string  `gorm:"size:128;index" json:"-"`       // PaymentIntent ID

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
