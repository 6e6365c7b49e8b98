package handlers

import (
	"net/http"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Stats GET /admin/stats - 平台总览
func (h *AdminHandler) Stats(c *gin.Context) {
	var userCount, tenantCount, threadCount, listingCount, orderCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	db.DB.Model(&models.Tenant{}).Count(&tenantCount)
	db.DB.Model(&models.Thread{}).Count(&threadCount)
	db.DB.Model(&models.Listing{}).Count(&listingCount)
	db.DB.Model(&models.Order{}).Where("status = ?", models.OrderPaid).Count(&orderCount)

	// 近 7 天增量
	weekAgo := time.Now().AddDate(0, 0, -7)
	var newUsers, newThreads, newOrders int64
	db.DB.Model(&models.User{}).Where("created_at >= ?", weekAgo).Count(&newUsers)
	db.DB.Model(&models.Thread{}).Where("created_at >= ?", weekAgo).Count(&newThreads)
	db.DB.Model(&models.Order{}).Where("created_at >= ? AND status = ?", weekAgo, models.OrderPaid).Count(&newOrders)

	// 需要人工关注的队列
	var openReports, failedWebhooks int64
	db.DB.Model(&models.Report{}).Where("status = ?", models.ReportOpen).Count(&openReports)
	db.DB.Model(&models.WebhookEvent{}).Where("status = ?", models.WebhookFailed).Count(&failedWebhooks)

	c.JSON(http.StatusOK, gin.H{
		"totals": gin.H{
			"users":       userCount,
			"tenants":     tenantCount,
			"threads":     threadCount,
			"listings":    listingCount,
			"paid_orders": orderCount,
		},
		"last_7_days": gin.H{
			"new_users":   newUsers,
			"new_threads": newThreads,
			"paid_orders": newOrders,
		},
		"attention": gin.H{
			"open_reports":    openReports,
			"failed_webhooks": failedWebhooks,
		},
	})
}

// FailedWebhooks GET /admin/webhooks/failed - 处理失败的回调事件
func (h *AdminHandler) FailedWebhooks(c *gin.Context) {
	var events []models.WebhookEvent
	db.DB.Where("status = ?", models.WebhookFailed).
		Order("created_at DESC").Limit(100).Find(&events)
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type setUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetUserRole PUT /admin/users/:id/role - 提升/撤销平台管理员
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	var req setUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Role != "user" && req.Role != "admin") {
		FailValidation(c, "role 只能是 user 或 admin")
		return
	}

	result := db.DB.Model(&models.User{}).Where("id = ?", c.Param("id")).Update("role", req.Role)
	if result.RowsAffected == 0 {
		FailNotFound(c, "用户不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
