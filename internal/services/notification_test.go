package services

import (
	"testing"

	"jishi/internal/models"
)

func allOn() *models.User {
	return &models.User{
		NotifyReplies:   true,
		NotifyReactions: true,
		NotifyOrders:    true,
	}
}

func TestShouldNotifySelfExclusion(t *testing.T) {
	// 自己的动作不通知自己，任何类型都一样
	actor := uint(7)
	for _, notifType := range []models.NotificationType{
		models.NotificationTypeReply,
		models.NotificationTypeMilestone,
		models.NotificationTypeSystem,
	} {
		if ShouldNotify(7, &actor, notifType, allOn()) {
			t.Errorf("%s: 自己触发的事件不应通知自己", notifType)
		}
	}
}

func TestShouldNotifyPreferences(t *testing.T) {
	actor := uint(2)

	recipient := allOn()
	recipient.NotifyReplies = false
	if ShouldNotify(1, &actor, models.NotificationTypeReply, recipient) {
		t.Error("关掉回复开关后不应收到回复通知")
	}
	if ShouldNotify(1, &actor, models.NotificationTypeCommentItem, recipient) {
		t.Error("帖子评论通知也走回复开关")
	}

	recipient = allOn()
	recipient.NotifyReactions = false
	if ShouldNotify(1, &actor, models.NotificationTypeMilestone, recipient) {
		t.Error("关掉点赞开关后不应收到里程碑通知")
	}

	recipient = allOn()
	recipient.NotifyOrders = false
	if ShouldNotify(1, nil, models.NotificationTypeOrderPaid, recipient) {
		t.Error("关掉订单开关后不应收到订单通知")
	}
}

func TestShouldNotifySystemAlwaysDelivered(t *testing.T) {
	// 系统和举报通知不受偏好控制
	recipient := &models.User{} // 全部开关关闭
	actor := uint(2)
	if !ShouldNotify(1, &actor, models.NotificationTypeSystem, recipient) {
		t.Error("系统通知必须投递")
	}
	if !ShouldNotify(1, &actor, models.NotificationTypeReport, recipient) {
		t.Error("举报通知必须投递")
	}
}

func TestShouldNotifyNilRecipient(t *testing.T) {
	// 查不到接收者时保守投递（删除竞态下宁多勿漏）
	actor := uint(2)
	if !ShouldNotify(1, &actor, models.NotificationTypeReply, nil) {
		t.Error("接收者缺失时应投递")
	}
}
