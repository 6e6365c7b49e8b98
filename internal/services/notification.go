package services

import (
	"log"

	"jishi/internal/db"
	"jishi/internal/models"
)

// 通知 fan-out 规则：先自排除，再查接收者的偏好开关。
// 系统类通知（惩罚、举报、订单异常告警）不受偏好控制。

// ShouldNotify 纯谓词：该事件要不要落一条通知
func ShouldNotify(recipientID uint, actorID *uint, notifType models.NotificationType, recipient *models.User) bool {
	// 自己的动作不通知自己
	if actorID != nil && *actorID == recipientID {
		return false
	}
	if recipient == nil {
		return true
	}

	switch notifType {
	case models.NotificationTypeReply, models.NotificationTypeCommentItem:
		return recipient.NotifyReplies
	case models.NotificationTypeMilestone:
		return recipient.NotifyReactions
	case models.NotificationTypeOrderPaid, models.NotificationTypeOrderFailed:
		return recipient.NotifyOrders
	}
	// system / report 永远投递
	return true
}

// Notify 创建通知行，fan-out 规则不通过时静默跳过
func Notify(recipientID uint, actorID *uint, notifType models.NotificationType, targetType string, targetID uint, message string) {
	var recipient models.User
	var recipientPtr *models.User
	if err := db.DB.First(&recipient, recipientID).Error; err == nil {
		recipientPtr = &recipient
	}

	if !ShouldNotify(recipientID, actorID, notifType, recipientPtr) {
		return
	}

	notification := models.Notification{
		UserID:     recipientID,
		ActorID:    actorID,
		Type:       notifType,
		TargetType: targetType,
		TargetID:   targetID,
		Message:    message,
	}
	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to create notification for user %d: %v", recipientID, err)
	}
}

// NotifyAsync 异步落通知（热路径上用）
func NotifyAsync(recipientID uint, actorID *uint, notifType models.NotificationType, targetType string, targetID uint, message string) {
	go Notify(recipientID, actorID, notifType, targetType, targetID, message)
}

// UnreadCount 未读数（middleware 注入用）
func UnreadCount(userID uint) int64 {
	var count int64
	db.DB.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count)
	return count
}
