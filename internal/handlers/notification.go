package handlers

import (
	"net/http"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List GET /notifications - 通知列表，时间倒序游标分页
func (h *NotificationHandler) List(c *gin.Context) {
	user := CurrentUser(c)
	const pageSize = 30

	query := db.DB.Preload("Actor").Where("user_id = ?", user.ID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}
	if cursor := c.Query("cursor"); cursor != "" {
		if t, id, ok := utils.DecodeTimeCursor(cursor); ok {
			query = query.Where("(created_at, id) < (?, ?)", t, id)
		}
	}

	var notifications []models.Notification
	query.Order("created_at DESC, id DESC").Limit(pageSize).Find(&notifications)

	next := ""
	if len(notifications) == pageSize {
		last := notifications[len(notifications)-1]
		next = utils.EncodeTimeCursor(last.CreatedAt, last.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  services.UnreadCount(user.ID),
		"next_cursor":   next,
	})
}

// MarkRead PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := CurrentUser(c)

	result := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Update("is_read", true)
	if result.RowsAffected == 0 {
		FailNotFound(c, "通知不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MarkAllRead PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := CurrentUser(c)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Remove DELETE /notifications/:id
func (h *NotificationHandler) Remove(c *gin.Context) {
	user := CurrentUser(c)

	result := db.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.Notification{})
	if result.RowsAffected == 0 {
		FailNotFound(c, "通知不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
