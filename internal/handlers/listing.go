package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct{}

func NewListingHandler() *ListingHandler {
	return &ListingHandler{}
}

type listingRequest struct {
	Title       string `json:"title" binding:"required,max=120"`
	Description string `json:"description" binding:"max=20000"`
	PriceCents  int64  `json:"price_cents" binding:"required,min=50"`
	Stock       int    `json:"stock" binding:"min=0"`
}

// Create POST /t/:slug/listings - 上架商品，货币跟随租户设置
func (h *ListingHandler) Create(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	if err := services.GateContentWrite(tenant.ID, user.ID); err != nil {
		FailFrom(c, err)
		return
	}

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "标题不能为空，价格至少 50 分")
		return
	}

	listing := models.Listing{
		Lid:         utils.RandPublicID(8),
		TenantID:    tenant.ID,
		UserID:      user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    tenant.Currency,
		Stock:       req.Stock,
		Status:      models.ListingActive,
	}
	if err := db.DB.Create(&listing).Error; err != nil {
		FailFrom(c, err)
		return
	}

	services.GetRankingService().ScheduleUpdate(models.TargetListing, listing.ID)
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// Feed GET /t/:slug/listings?sort=hot|new|best - 市集信息流
// 首页结果走本地缓存，一分钟内的重复请求不打数据库
func (h *ListingHandler) Feed(c *gin.Context) {
	tenant := CurrentTenant(c)
	sort := c.DefaultQuery("sort", "hot")
	cursor := c.Query("cursor")
	search := strings.TrimSpace(c.Query("q"))

	cacheKey := fmt.Sprintf("listings:%d:%s", tenant.ID, sort)
	cacheable := cursor == "" && search == ""
	if cacheable {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	query := db.DB.Preload("User").
		Where("tenant_id = ? AND is_removed = ? AND status <> ?", tenant.ID, false, models.ListingArchived)
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	switch sort {
	case "new":
		if cursor != "" {
			if t, id, ok := utils.DecodeTimeCursor(cursor); ok {
				query = query.Where("(created_at, id) < (?, ?)", t, id)
			}
		}
		query = query.Order("created_at DESC, id DESC")
	case "best":
		query = applyScoreCursor(query, cursor, "wilson_score")
	default:
		sort = "hot"
		query = applyScoreCursor(query, cursor, "hot_score")
	}

	var listings []models.Listing
	query.Limit(feedPageSize).Find(&listings)

	next := ""
	if len(listings) == feedPageSize {
		last := listings[len(listings)-1]
		switch sort {
		case "new":
			next = utils.EncodeTimeCursor(last.CreatedAt, last.ID)
		case "best":
			next = utils.EncodeScoreCursor(last.WilsonScore, last.ID)
		default:
			next = utils.EncodeScoreCursor(last.HotScore, last.ID)
		}
	}

	payload := gin.H{"listings": listings, "sort": sort, "next_cursor": next}
	if cacheable {
		utils.GetCache().Set(cacheKey, payload, time.Minute)
	}
	c.JSON(http.StatusOK, payload)
}

// Show GET /t/:slug/listings/:lid - 商品详情，描述渲染成 HTML
func (h *ListingHandler) Show(c *gin.Context) {
	tenant := CurrentTenant(c)

	var listing models.Listing
	if err := db.DB.Preload("User").
		Where("tenant_id = ? AND lid = ?", tenant.ID, c.Param("lid")).
		First(&listing).Error; err != nil {
		FailNotFound(c, "商品不存在")
		return
	}
	if listing.IsRemoved {
		FailNotFound(c, "商品已下架")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing":          listing,
		"description_html": utils.RenderMarkdown(listing.Description),
	})
}

type listingUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	Status      *string `json:"status"`
}

// Update PUT /t/:slug/listings/:lid - 卖家改价/补货/归档
func (h *ListingHandler) Update(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	var listing models.Listing
	if err := db.DB.Where("tenant_id = ? AND lid = ?", tenant.ID, c.Param("lid")).First(&listing).Error; err != nil {
		FailNotFound(c, "商品不存在")
		return
	}
	if listing.UserID != user.ID && models.RoleRank(CurrentRole(c)) < models.RoleRank(models.RoleModerator) {
		Fail(c, http.StatusForbidden, "FORBIDDEN", "只有卖家或版主可以编辑")
		return
	}

	var req listingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "请求体格式不正确")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 50 {
			FailValidation(c, "价格至少 50 分")
			return
		}
		updates["price_cents"] = *req.PriceCents
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			FailValidation(c, "库存不能为负")
			return
		}
		updates["stock"] = *req.Stock
		// 补货后自动恢复在售
		if *req.Stock > 0 && listing.Status == models.ListingSoldOut {
			updates["status"] = models.ListingActive
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case models.ListingActive, models.ListingArchived:
			updates["status"] = *req.Status
		default:
			FailValidation(c, "状态只能是 active 或 archived")
			return
		}
	}
	if len(updates) > 0 {
		if err := db.DB.Model(&listing).Updates(updates).Error; err != nil {
			FailFrom(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// Remove DELETE /t/:slug/listings/:lid - 软删除下架
func (h *ListingHandler) Remove(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	var listing models.Listing
	if err := db.DB.Where("tenant_id = ? AND lid = ?", tenant.ID, c.Param("lid")).First(&listing).Error; err != nil {
		FailNotFound(c, "商品不存在")
		return
	}

	isModerator := models.RoleRank(CurrentRole(c)) >= models.RoleRank(models.RoleModerator)
	if listing.UserID != user.ID && !isModerator {
		Fail(c, http.StatusForbidden, "FORBIDDEN", "只有卖家或版主可以删除")
		return
	}

	if err := db.DB.Model(&listing).Update("is_removed", true).Error; err != nil {
		FailFrom(c, err)
		return
	}

	if isModerator && listing.UserID != user.ID {
		services.AddReputationAsync(listing.UserID, services.RepContentRemoved, services.ActionContentRemoved)
		services.NotifyAsync(listing.UserID, nil, models.NotificationTypeSystem, models.TargetListing, listing.ID,
			"您的商品《"+listing.Title+"》因违反社区规则被下架")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
