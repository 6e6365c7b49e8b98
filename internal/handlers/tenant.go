package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct{}

func NewTenantHandler() *TenantHandler {
	return &TenantHandler{}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,30}[a-z0-9]$`)

type createTenantRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required,max=60"`
	Description string `json:"description" binding:"max=500"`
	Currency    string `json:"currency"`
}

// Create POST /tenants - 创建社区，创建者自动成为 owner
func (h *TenantHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "slug 和名称不能为空")
		return
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(req.Slug) {
		FailValidation(c, "slug 只能包含小写字母、数字和中划线，长度 3-32")
		return
	}

	tenant, err := services.CreateTenant(user, req.Slug, req.Name, req.Description, strings.ToLower(req.Currency))
	if err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tenant": tenant})
}

// List GET /tenants - 社区列表
func (h *TenantHandler) List(c *gin.Context) {
	var tenants []models.Tenant
	db.DB.Order("created_at DESC").Limit(100).Find(&tenants)
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

// Show GET /t/:slug - 社区详情，带当前用户角色
func (h *TenantHandler) Show(c *gin.Context) {
	tenant := CurrentTenant(c)

	var memberCount int64
	db.DB.Model(&models.Membership{}).Where("tenant_id = ?", tenant.ID).Count(&memberCount)

	c.JSON(http.StatusOK, gin.H{
		"tenant":       tenant,
		"member_count": memberCount,
		"role":         CurrentRole(c),
	})
}

// Join POST /t/:slug/join - 加入社区成为 member
func (h *TenantHandler) Join(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	// 被封禁的用户不能重新加入
	if status := services.CheckGate(tenant.ID, user.ID); status.Banned {
		FailFrom(c, services.ErrBanned)
		return
	}

	membership := models.Membership{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     models.RoleMember,
	}
	if err := db.DB.Create(&membership).Error; err != nil {
		FailFrom(c, err) // 重复加入会撞唯一索引 -> DUPLICATE
		return
	}
	c.JSON(http.StatusCreated, gin.H{"membership": membership})
}

// Leave POST /t/:slug/leave - 退出社区，owner 不能退出自己的社区
func (h *TenantHandler) Leave(c *gin.Context) {
	user := CurrentUser(c)
	tenant := CurrentTenant(c)

	if tenant.OwnerID == user.ID {
		FailValidation(c, "社区所有者不能退出自己的社区")
		return
	}

	result := db.DB.Where("tenant_id = ? AND user_id = ?", tenant.ID, user.ID).Delete(&models.Membership{})
	if result.RowsAffected == 0 {
		FailNotFound(c, "您不是该社区成员")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Members GET /t/:slug/members - 成员列表
func (h *TenantHandler) Members(c *gin.Context) {
	tenant := CurrentTenant(c)

	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	const pageSize = 50

	var memberships []models.Membership
	db.DB.Preload("User").
		Where("tenant_id = ?", tenant.ID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&memberships)

	c.JSON(http.StatusOK, gin.H{"members": memberships, "page": page})
}

type grantRoleRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// GrantRole PUT /t/:slug/members/role - owner 调整成员角色
func (h *TenantHandler) GrantRole(c *gin.Context) {
	tenant := CurrentTenant(c)

	var req grantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "user_id 和 role 不能为空")
		return
	}
	if models.RoleRank(req.Role) == 0 {
		FailValidation(c, "角色只能是 owner/moderator/member")
		return
	}
	if req.UserID == tenant.OwnerID {
		FailValidation(c, "不能修改社区所有者的角色")
		return
	}

	result := db.DB.Model(&models.Membership{}).
		Where("tenant_id = ? AND user_id = ?", tenant.ID, req.UserID).
		Update("role", req.Role)
	if result.Error != nil {
		FailFrom(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		FailNotFound(c, "该用户不是社区成员")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
