package handlers

import (
	"net/http"

	"jishi/internal/db"
	"jishi/internal/models"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List GET /t/:slug/categories - 租户板块列表
func (h *CategoryHandler) List(c *gin.Context) {
	tenant := CurrentTenant(c)

	var categories []models.Category
	db.DB.Where("tenant_id = ?", tenant.ID).Order("id ASC").Find(&categories)
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=30"`
	Description string `json:"description" binding:"max=200"`
}

// Create POST /t/:slug/categories - 版主以上可建板块
func (h *CategoryHandler) Create(c *gin.Context) {
	tenant := CurrentTenant(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "板块名称不能为空")
		return
	}

	category := models.Category{
		TenantID:    tenant.ID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := db.DB.Create(&category).Error; err != nil {
		FailFrom(c, err) // 同名板块撞唯一索引 -> DUPLICATE
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// Update PUT /t/:slug/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	tenant := CurrentTenant(c)

	var category models.Category
	if err := db.DB.Where("tenant_id = ? AND id = ?", tenant.ID, c.Param("id")).First(&category).Error; err != nil {
		FailNotFound(c, "板块不存在")
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailValidation(c, "板块名称不能为空")
		return
	}

	if err := db.DB.Model(&category).Updates(map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}).Error; err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}
