package handlers

import (
	"net/http"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct{}

func NewOrderHandler() *OrderHandler {
	return &OrderHandler{}
}

type checkoutRequest struct {
	Quantity int `json:"quantity"`
}

// Checkout POST /t/:slug/listings/:lid/checkout - 下单并跳转 Stripe 支付页
// 订单先落 pending，支付结果由 webhook 异步回写
func (h *OrderHandler) Checkout(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	// 购买只拦封禁，禁言用户仍可买东西
	if err := services.GatePurchase(tenant.ID, user.ID); err != nil {
		FailFrom(c, err)
		return
	}

	var listing models.Listing
	if err := db.DB.Where("tenant_id = ? AND lid = ?", tenant.ID, c.Param("lid")).First(&listing).Error; err != nil {
		FailNotFound(c, "商品不存在")
		return
	}
	if listing.IsRemoved || listing.Status != models.ListingActive {
		FailValidation(c, "商品已下架或售罄")
		return
	}
	if listing.UserID == user.ID {
		FailValidation(c, "不能购买自己的商品")
		return
	}

	var req checkoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Quantity > listing.Stock {
		FailValidation(c, "库存不足")
		return
	}

	order := models.Order{
		Oid:         utils.RandPublicID(8),
		TenantID:    tenant.ID,
		ListingID:   listing.ID,
		BuyerID:     user.ID,
		SellerID:    listing.UserID,
		Quantity:    req.Quantity,
		AmountCents: listing.PriceCents * int64(req.Quantity),
		Currency:    listing.Currency,
		Status:      models.OrderPending,
	}
	if err := db.DB.Create(&order).Error; err != nil {
		FailFrom(c, err)
		return
	}

	sessionID, checkoutURL, err := services.GetStripeService().CreateCheckout(&order, &listing, user)
	if err != nil {
		// 支付方不可用时订单直接作废，买家可以重试
		db.DB.Model(&order).Update("status", models.OrderFailed)
		FailFrom(c, err)
		return
	}

	if err := db.DB.Model(&order).Update("stripe_session", sessionID).Error; err != nil {
		FailFrom(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":        order,
		"checkout_url": checkoutURL,
	})
}

// List GET /orders?role=buyer|seller - 我的订单
func (h *OrderHandler) List(c *gin.Context) {
	user := CurrentUser(c)

	query := db.DB.Preload("Listing").Preload("Buyer")
	if c.DefaultQuery("role", "buyer") == "seller" {
		query = query.Where("seller_id = ?", user.ID)
	} else {
		query = query.Where("buyer_id = ?", user.ID)
	}

	var orders []models.Order
	query.Order("created_at DESC").Limit(100).Find(&orders)
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Show GET /orders/:oid - 订单详情，只有买卖双方可见
func (h *OrderHandler) Show(c *gin.Context) {
	user := CurrentUser(c)

	var order models.Order
	if err := db.DB.Preload("Listing").Preload("Buyer").
		Where("oid = ?", c.Param("oid")).First(&order).Error; err != nil {
		FailNotFound(c, "订单不存在")
		return
	}
	if order.BuyerID != user.ID && order.SellerID != user.ID && !user.IsAdmin() {
		FailNotFound(c, "订单不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
