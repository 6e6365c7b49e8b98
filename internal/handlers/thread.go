package handlers

import (
	"net/http"
	"strings"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ThreadHandler struct{}

func NewThreadHandler() *ThreadHandler {
	return &ThreadHandler{}
}

const feedPageSize = 25

type threadRequest struct {
	Title      string `json:"title" binding:"required,max=120"`
	URL        string `json:"url" binding:"max=500"`
	Content    string `json:"content" binding:"max=20000"`
	CategoryID uint   `json:"category_id" binding:"required"`
}

// Create POST /t/:slug/threads - 发帖，禁言/封禁用户被闸门拦下
func (h *ThreadHandler) Create(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	if err := services.GateContentWrite(tenant.ID, user.ID); err != nil {
		FailFrom(c, err)
		return
	}

	var req threadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "标题和板块不能为空")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		FailValidation(c, "标题不能为空")
		return
	}

	// 板块必须属于当前租户
	var category models.Category
	if err := db.DB.Where("tenant_id = ? AND id = ?", tenant.ID, req.CategoryID).First(&category).Error; err != nil {
		FailValidation(c, "板块不存在")
		return
	}

	thread := models.Thread{
		Tid:        utils.RandPublicID(8),
		TenantID:   tenant.ID,
		UserID:     user.ID,
		CategoryID: category.ID,
		Title:      strings.TrimSpace(req.Title),
		URL:        strings.TrimSpace(req.URL),
		Content:    req.Content,
	}
	if err := db.DB.Create(&thread).Error; err != nil {
		FailFrom(c, err)
		return
	}

	services.GetRankingService().ScheduleUpdate(models.TargetThread, thread.ID)
	c.JSON(http.StatusCreated, gin.H{"thread": thread})
}

// Feed GET /t/:slug/threads?sort=hot|new|best|controversial - 游标分页信息流
func (h *ThreadHandler) Feed(c *gin.Context) {
	tenant := CurrentTenant(c)
	sort := c.DefaultQuery("sort", "hot")
	cursor := c.Query("cursor")

	query := db.DB.Preload("User").Preload("Category").
		Where("tenant_id = ? AND is_removed = ?", tenant.ID, false)
	if cid := c.Query("category_id"); cid != "" {
		query = query.Where("category_id = ?", utils.StringToUint(cid))
	}

	var threads []models.Thread
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
	case "controversial":
		// 争议榜只看近 30 天，老帖没有讨论价值
		query = query.Where("created_at >= ? AND controversy_score > 0", time.Now().AddDate(0, 0, -30))
		query = applyScoreCursor(query, cursor, "controversy_score")
	default:
		sort = "hot"
		query = applyScoreCursor(query, cursor, "hot_score")
	}

	// 置顶帖只在 hot 首页出现
	if sort == "hot" && cursor == "" {
		var pinned []models.Thread
		db.DB.Preload("User").Preload("Category").
			Where("tenant_id = ? AND is_pinned = ? AND is_removed = ?", tenant.ID, true, false).
			Order("created_at DESC").Find(&pinned)
		threads = append(threads, pinned...)
		query = query.Where("is_pinned = ?", false)
	}

	var page []models.Thread
	query.Limit(feedPageSize).Find(&page)
	threads = append(threads, page...)

	c.JSON(http.StatusOK, gin.H{
		"threads":     threads,
		"sort":        sort,
		"next_cursor": nextThreadCursor(sort, page),
	})
}

// applyScoreCursor 分数降序 + id 降序的游标条件
func applyScoreCursor(query *gorm.DB, cursor, column string) *gorm.DB {
	if cursor != "" {
		if score, id, ok := utils.DecodeScoreCursor(cursor); ok {
			query = query.Where("("+column+", id) < (?, ?)", score, id)
		}
	}
	return query.Order(column + " DESC, id DESC")
}

func nextThreadCursor(sort string, page []models.Thread) string {
	if len(page) < feedPageSize {
		return ""
	}
	last := page[len(page)-1]
	switch sort {
	case "new":
		return utils.EncodeTimeCursor(last.CreatedAt, last.ID)
	case "best":
		return utils.EncodeScoreCursor(last.WilsonScore, last.ID)
	case "controversial":
		return utils.EncodeScoreCursor(last.ControversyScore, last.ID)
	}
	return utils.EncodeScoreCursor(last.HotScore, last.ID)
}

// Show GET /t/:slug/threads/:tid - 帖子详情，内容渲染成 HTML
func (h *ThreadHandler) Show(c *gin.Context) {
	tenant := CurrentTenant(c)

	var thread models.Thread
	if err := db.DB.Preload("User").Preload("Category").
		Where("tenant_id = ? AND tid = ?", tenant.ID, c.Param("tid")).
		First(&thread).Error; err != nil {
		FailNotFound(c, "帖子不存在")
		return
	}
	if thread.IsRemoved {
		FailNotFound(c, "帖子已被移除")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thread":       thread,
		"content_html": utils.RenderMarkdown(thread.Content),
	})
}

type threadUpdateRequest struct {
	Title   *string `json:"title"`
	URL     *string `json:"url"`
	Content *string `json:"content"`
}

// Update PUT /t/:slug/threads/:tid - 作者本人或版主可改
func (h *ThreadHandler) Update(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	var thread models.Thread
	if err := db.DB.Where("tenant_id = ? AND tid = ?", tenant.ID, c.Param("tid")).First(&thread).Error; err != nil {
		FailNotFound(c, "帖子不存在")
		return
	}
	if thread.UserID != user.ID && models.RoleRank(CurrentRole(c)) < models.RoleRank(models.RoleModerator) {
		Fail(c, http.StatusForbidden, "FORBIDDEN", "只有作者或版主可以编辑")
		return
	}
	if thread.UserID == user.ID {
		if err := services.GateContentWrite(tenant.ID, user.ID); err != nil {
			FailFrom(c, err)
			return
		}
	}

	var req threadUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "请求体格式不正确")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.URL != nil {
		updates["url"] = strings.TrimSpace(*req.URL)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if len(updates) > 0 {
		if err := db.DB.Model(&thread).Updates(updates).Error; err != nil {
			FailFrom(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"thread": thread})
}

// Pin POST /t/:slug/threads/:tid/pin - 版主置顶/取消置顶
func (h *ThreadHandler) Pin(c *gin.Context) {
	tenant := CurrentTenant(c)

	var thread models.Thread
	if err := db.DB.Where("tenant_id = ? AND tid = ?", tenant.ID, c.Param("tid")).First(&thread).Error; err != nil {
		FailNotFound(c, "帖子不存在")
		return
	}

	if err := db.DB.Model(&thread).Update("is_pinned", !thread.IsPinned).Error; err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_pinned": !thread.IsPinned})
}

// Remove DELETE /t/:slug/threads/:tid - 作者撤下或版主下架（软删除）
func (h *ThreadHandler) Remove(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	var thread models.Thread
	if err := db.DB.Where("tenant_id = ? AND tid = ?", tenant.ID, c.Param("tid")).First(&thread).Error; err != nil {
		FailNotFound(c, "帖子不存在")
		return
	}

	isModerator := models.RoleRank(CurrentRole(c)) >= models.RoleRank(models.RoleModerator)
	if thread.UserID != user.ID && !isModerator {
		Fail(c, http.StatusForbidden, "FORBIDDEN", "只有作者或版主可以删除")
		return
	}

	if err := db.DB.Model(&thread).Update("is_removed", true).Error; err != nil {
		FailFrom(c, err)
		return
	}

	// 版主下架别人的内容要扣作者信誉并通知
	if isModerator && thread.UserID != user.ID {
		services.AddReputationAsync(thread.UserID, services.RepContentRemoved, services.ActionContentRemoved)
		services.NotifyAsync(thread.UserID, nil, models.NotificationTypeSystem, models.TargetThread, thread.ID,
			"您的帖子《"+thread.Title+"》因违反社区规则被下架")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
