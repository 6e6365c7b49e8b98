package handlers

import (
	"fmt"
	"net/http"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct{}

func NewModerationHandler() *ModerationHandler {
	return &ModerationHandler{}
}

type punishRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	Kind      string `json:"kind" binding:"required"` // ban / mute
	Reason    string `json:"reason" binding:"required,max=200"`
	Permanent bool   `json:"permanent"`
	Days      int    `json:"days"`
}

// Punish POST /t/:slug/moderation/punish - 封禁或禁言，操作者角色必须严格高于目标
func (h *ModerationHandler) Punish(c *gin.Context) {
	actor := CurrentUser(c)
	tenant := CurrentTenant(c)

	var req punishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "user_id、kind、reason 不能为空")
		return
	}
	if req.Kind != models.PunishBan && req.Kind != models.PunishMute {
		FailValidation(c, "kind 只能是 ban 或 mute")
		return
	}

	var target models.User
	if err := db.DB.First(&target, req.UserID).Error; err != nil {
		FailNotFound(c, "用户不存在")
		return
	}

	targetRole := services.EffectiveRole(tenant.ID, &target)
	if !services.CanPunish(CurrentRole(c), targetRole) {
		FailFrom(c, services.ErrRoleTooLow)
		return
	}

	ban, err := services.Punish(tenant.ID, req.UserID, actor.ID, req.Kind, req.Reason, req.Permanent, req.Days)
	if err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"punishment": ban})
}

type revokeRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Kind   string `json:"kind" binding:"required"`
}

// Revoke POST /t/:slug/moderation/revoke - 解除惩罚
func (h *ModerationHandler) Revoke(c *gin.Context) {
	tenant := CurrentTenant(c)

	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "user_id 和 kind 不能为空")
		return
	}

	if err := services.Revoke(tenant.ID, req.UserID, req.Kind); err != nil {
		FailNotFound(c, "没有找到生效中的惩罚")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Punishments GET /t/:slug/moderation/punishments - 生效中的惩罚列表
func (h *ModerationHandler) Punishments(c *gin.Context) {
	tenant := CurrentTenant(c)
	c.JSON(http.StatusOK, gin.H{"punishments": services.ListActivePunishments(tenant.ID)})
}

type reportRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   uint   `json:"target_id" binding:"required"`
	Reason     string `json:"reason" binding:"required,max=200"`
}

// Report POST /t/:slug/reports - 举报内容，通知全体版主
func (h *ModerationHandler) Report(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "target_type、target_id、reason 不能为空")
		return
	}
	switch req.TargetType {
	case models.TargetThread, models.TargetComment, models.TargetListing:
	default:
		FailValidation(c, "不支持的举报对象")
		return
	}

	// 同一用户对同一目标的未处理举报不重复记录
	var count int64
	db.DB.Model(&models.Report{}).
		Where("tenant_id = ? AND user_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			tenant.ID, user.ID, req.TargetType, req.TargetID, models.ReportOpen).
		Count(&count)
	if count > 0 {
		Fail(c, http.StatusConflict, "DUPLICATE", "您已举报过该内容，请等待处理")
		return
	}

	report := models.Report{
		TenantID:   tenant.ID,
		UserID:     user.ID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
	}
	if err := db.DB.Create(&report).Error; err != nil {
		FailFrom(c, err)
		return
	}

	// 版主和 owner 都收一条举报通知
	var moderatorIDs []uint
	db.DB.Model(&models.Membership{}).
		Where("tenant_id = ? AND role IN ?", tenant.ID, []string{models.RoleOwner, models.RoleModerator}).
		Pluck("user_id", &moderatorIDs)
	for _, modID := range moderatorIDs {
		services.NotifyAsync(modID, &user.ID, models.NotificationTypeReport, req.TargetType, req.TargetID,
			fmt.Sprintf("收到新举报: %s", req.Reason))
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// Reports GET /t/:slug/reports - 版主查看举报队列
func (h *ModerationHandler) Reports(c *gin.Context) {
	tenant := CurrentTenant(c)

	query := db.DB.Preload("User").Where("tenant_id = ?", tenant.ID)
	status := c.DefaultQuery("status", models.ReportOpen)
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	query.Order("created_at DESC").Limit(100).Find(&reports)
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type resolveReportRequest struct {
	Action string `json:"action" binding:"required"` // takedown / dismiss
}

// ResolveReport PUT /t/:slug/reports/:id - 处理举报
// takedown 会下架内容、扣作者信誉并通知；dismiss 只关闭举报
func (h *ModerationHandler) ResolveReport(c *gin.Context) {
	actor := CurrentUser(c)
	tenant := CurrentTenant(c)

	var report models.Report
	if err := db.DB.Where("tenant_id = ? AND id = ?", tenant.ID, utils.StringToUint(c.Param("id"))).
		First(&report).Error; err != nil {
		FailNotFound(c, "举报不存在")
		return
	}
	if report.Status != models.ReportOpen {
		Fail(c, http.StatusConflict, "DUPLICATE", "该举报已被处理")
		return
	}

	var req resolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "action 不能为空")
		return
	}

	status := models.ReportDismissed
	if req.Action == "takedown" {
		status = models.ReportResolved
		if err := h.takedown(report.TargetType, report.TargetID); err != nil {
			FailFrom(c, err)
			return
		}
	} else if req.Action != "dismiss" {
		FailValidation(c, "action 只能是 takedown 或 dismiss")
		return
	}

	now := time.Now()
	if err := db.DB.Model(&report).Updates(map[string]interface{}{
		"status":         status,
		"resolved_by_id": &actor.ID,
		"resolved_at":    &now,
	}).Error; err != nil {
		FailFrom(c, err)
		return
	}

	// 举报人收处理结果
	services.NotifyAsync(report.UserID, nil, models.NotificationTypeSystem, report.TargetType, report.TargetID,
		"您的举报已处理，结果: "+status)

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// takedown 下架被举报内容并处罚作者信誉
func (h *ModerationHandler) takedown(targetType string, targetID uint) error {
	var authorID uint
	var label string

	switch targetType {
	case models.TargetThread:
		var thread models.Thread
		if err := db.DB.First(&thread, targetID).Error; err != nil {
			return err
		}
		if err := db.DB.Model(&thread).Update("is_removed", true).Error; err != nil {
			return err
		}
		authorID, label = thread.UserID, "帖子《"+thread.Title+"》"
	case models.TargetComment:
		var comment models.Comment
		if err := db.DB.First(&comment, targetID).Error; err != nil {
			return err
		}
		if err := db.DB.Model(&comment).Update("is_deleted", true).Error; err != nil {
			return err
		}
		authorID, label = comment.UserID, "评论"
	case models.TargetListing:
		var listing models.Listing
		if err := db.DB.First(&listing, targetID).Error; err != nil {
			return err
		}
		if err := db.DB.Model(&listing).Update("is_removed", true).Error; err != nil {
			return err
		}
		authorID, label = listing.UserID, "商品《"+listing.Title+"》"
	}

	services.AddReputationAsync(authorID, services.RepContentRemoved, services.ActionContentRemoved)
	services.NotifyAsync(authorID, nil, models.NotificationTypeSystem, targetType, targetID,
		"您的"+label+"因被举报核实已下架")
	return nil
}
