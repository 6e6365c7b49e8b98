package handlers

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type commentRequest struct {
	Content  string `json:"content" binding:"required,max=10000"`
	ParentID *uint  `json:"parent_id"`
}

// Create POST /t/:slug/threads/:tid/comments - 评论或回复
func (h *CommentHandler) Create(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	if err := services.GateContentWrite(tenant.ID, user.ID); err != nil {
		FailFrom(c, err)
		return
	}

	var thread models.Thread
	if err := db.DB.Where("tenant_id = ? AND tid = ?", tenant.ID, c.Param("tid")).First(&thread).Error; err != nil || thread.IsRemoved {
		FailNotFound(c, "帖子不存在")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		FailValidation(c, "评论内容不能为空")
		return
	}

	// 回复的父评论必须在同一帖子下且未删除
	var parent *models.Comment
	if req.ParentID != nil {
		var p models.Comment
		if err := db.DB.Where("id = ? AND thread_id = ?", *req.ParentID, thread.ID).First(&p).Error; err != nil || p.IsDeleted {
			FailValidation(c, "回复的评论不存在")
			return
		}
		parent = &p
	}

	comment := models.Comment{
		Cid:      utils.RandPublicID(8),
		TenantID: tenant.ID,
		ThreadID: thread.ID,
		UserID:   user.ID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&thread).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		FailFrom(c, err)
		return
	}

	h.fanOut(user, &thread, &comment, parent)

	services.GetRankingService().ScheduleUpdate(models.TargetThread, thread.ID)
	comment.User = *user
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// fanOut 评论的通知分发：回复通知父评论作者，楼主另收一条帖子评论通知
func (h *CommentHandler) fanOut(actor *models.User, thread *models.Thread, comment *models.Comment, parent *models.Comment) {
	link := fmt.Sprintf("%s/t/%d/threads/%s#%s", os.Getenv("SITE_URL"), thread.TenantID, thread.Tid, comment.Cid)

	if parent != nil {
		services.NotifyAsync(parent.UserID, &actor.ID, models.NotificationTypeReply, models.TargetComment, comment.ID,
			fmt.Sprintf("%s 回复了您在《%s》下的评论", actor.Username, thread.Title))

		// 邮件提醒走同一套偏好开关
		var parentAuthor models.User
		if err := db.DB.First(&parentAuthor, parent.UserID).Error; err == nil &&
			services.ShouldNotify(parent.UserID, &actor.ID, models.NotificationTypeReply, &parentAuthor) {
			services.NewMailService().SendReplyNotification(
				parentAuthor.Email, actor.Username, thread.Title, comment.Content, link)
		}

		// 楼主和父评论作者是同一人时不重复发
		if thread.UserID == parent.UserID {
			return
		}
	}

	services.NotifyAsync(thread.UserID, &actor.ID, models.NotificationTypeCommentItem, models.TargetThread, thread.ID,
		fmt.Sprintf("%s 评论了您的帖子《%s》", actor.Username, thread.Title))
}

// List GET /t/:slug/threads/:tid/comments?sort=best|controversial
// 评论树，每层默认按 wilson 分降序，controversial 按争议分降序
func (h *CommentHandler) List(c *gin.Context) {
	tenant := CurrentTenant(c)

	var thread models.Thread
	if err := db.DB.Where("tenant_id = ? AND tid = ?", tenant.ID, c.Param("tid")).First(&thread).Error; err != nil {
		FailNotFound(c, "帖子不存在")
		return
	}

	var comments []*models.Comment
	db.DB.Preload("User").Where("thread_id = ?", thread.ID).Order("created_at ASC").Find(&comments)

	sortKey := commentWilson
	if c.Query("sort") == "controversial" {
		sortKey = commentControversy
	}
	c.JSON(http.StatusOK, gin.H{"comments": buildCommentTree(comments, sortKey)})
}

func commentWilson(comment *models.Comment) float64 {
	return comment.WilsonScore
}

func commentControversy(comment *models.Comment) float64 {
	return utils.ControversyScore(comment.UpvoteCount, comment.DownvoteCount, utils.ControversyMinComment)
}

// buildCommentTree 内存组树：已删除评论保留占位但清空内容
func buildCommentTree(comments []*models.Comment, sortKey func(*models.Comment) float64) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, comment := range comments {
		if comment.IsDeleted {
			comment.Content = ""
			comment.User = models.User{Username: "[已删除]"}
		}
		byID[comment.ID] = comment
	}

	roots := make([]*models.Comment, 0)
	for _, comment := range comments {
		if comment.ParentID == nil {
			roots = append(roots, comment)
			continue
		}
		if parent, ok := byID[*comment.ParentID]; ok {
			parent.Replies = append(parent.Replies, comment)
		} else {
			roots = append(roots, comment)
		}
	}

	var sortLevel func(level []*models.Comment)
	sortLevel = func(level []*models.Comment) {
		sort.SliceStable(level, func(i, j int) bool {
			return sortKey(level[i]) > sortKey(level[j])
		})
		for _, comment := range level {
			sortLevel(comment.Replies)
		}
	}
	sortLevel(roots)
	return roots
}

// Remove DELETE /t/:slug/comments/:cid - 软删除，树结构保留
func (h *CommentHandler) Remove(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	var comment models.Comment
	if err := db.DB.Where("tenant_id = ? AND cid = ?", tenant.ID, c.Param("cid")).First(&comment).Error; err != nil {
		FailNotFound(c, "评论不存在")
		return
	}

	isModerator := models.RoleRank(CurrentRole(c)) >= models.RoleRank(models.RoleModerator)
	if comment.UserID != user.ID && !isModerator {
		Fail(c, http.StatusForbidden, "FORBIDDEN", "只有作者或版主可以删除")
		return
	}

	if err := db.DB.Model(&comment).Update("is_deleted", true).Error; err != nil {
		FailFrom(c, err)
		return
	}

	if isModerator && comment.UserID != user.ID {
		services.AddReputationAsync(comment.UserID, services.RepContentRemoved, services.ActionContentRemoved)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
