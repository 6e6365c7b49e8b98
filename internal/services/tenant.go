package services

import (
	"errors"
	"fmt"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/utils"

	"gorm.io/gorm"
)

var ErrNotMember = errors.New("not a member of this tenant")

// FindTenantBySlug 按 slug 查租户，带本地缓存（路由中间件每个请求都会查）
func FindTenantBySlug(slug string) (*models.Tenant, error) {
	cacheKey := fmt.Sprintf("tenant:slug:%s", slug)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if tenant, ok := cached.(*models.Tenant); ok {
			return tenant, nil
		}
	}

	var tenant models.Tenant
	if err := db.DB.Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}

	utils.GetCache().Set(cacheKey, &tenant, 5*time.Minute)
	return &tenant, nil
}

// GetMembership 用户在租户内的身份，非成员返回 ErrNotMember
func GetMembership(tenantID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := db.DB.Where("tenant_id = ? AND user_id = ?", tenantID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return &membership, nil
}

// EffectiveRole 角色解析：平台管理员视同 owner，非成员返回空串
func EffectiveRole(tenantID uint, user *models.User) string {
	if user == nil {
		return ""
	}
	if user.IsAdmin() {
		return models.RoleOwner
	}
	membership, err := GetMembership(tenantID, user.ID)
	if err != nil {
		return ""
	}
	return membership.Role
}

// CreateTenant 创建租户：建租户行、创建者成为 owner、播种默认板块
func CreateTenant(owner *models.User, slug, name, description, currency string) (*models.Tenant, error) {
	if currency == "" {
		currency = "usd"
	}

	tenant := models.Tenant{
		Slug:        slug,
		Name:        name,
		Description: description,
		Currency:    currency,
		OwnerID:     owner.ID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		membership := models.Membership{
			UserID:   owner.ID,
			TenantID: tenant.ID,
			Role:     models.RoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	db.SeedTenantCategories(tenant.ID)
	return &tenant, nil
}
