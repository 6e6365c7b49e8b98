package db

import (
	"log"
	"os"

	"jishi/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=jishi port=5432 sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	// TranslateError: 让唯一键冲突映射为 gorm.ErrDuplicatedKey（webhook 幂等去重依赖这个）
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Tenant{},
		&models.Membership{},
		&models.Category{},
		&models.Thread{},
		&models.Comment{},
		&models.Listing{},
		&models.Order{},
		&models.Reaction{},
		&models.Ban{},
		&models.Report{},
		&models.Notification{},
		&models.ReputationLog{},
		&models.WebhookEvent{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
}

// SeedTenantCategories 给新租户创建默认板块
func SeedTenantCategories(tenantID uint) {
	categories := []models.Category{
		{TenantID: tenantID, Name: "综合", Description: "General discussion"},
		{TenantID: tenantID, Name: "交易", Description: "Listings, deals and buyer questions"},
		{TenantID: tenantID, Name: "展示", Description: "Show and tell"},
		{TenantID: tenantID, Name: "反馈", Description: "Feedback for the shop owner"},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Name, err)
		}
	}
}

// Ping 健康检查用
func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
