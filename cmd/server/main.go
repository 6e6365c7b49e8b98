package main

import (
	"log"
	"os"
	"strings"

	"jishi/internal/db"
	"jishi/internal/handlers"
	"jishi/internal/middleware"
	"jishi/internal/router"
	"jishi/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// 初始化异步排名服务 + 每日定时刷新
	services.GetRankingService().StartScheduledRefresh()

	// Google OAuth 配置
	handlers.InitGoogleOAuth()

	// Initialize Gin
	r := gin.Default()

	// CORS：白名单 + 凭证模式，前端跨域调用要带 Authorization 头
	corsConfig := cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	// Setup Sessions（只用于 OAuth state）
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("jishi_session", store))

	// Middleware
	r.Use(middleware.Metrics())
	r.Use(middleware.LoadUser())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("JiShi server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// corsOrigins 从 CORS_ORIGINS 读允许的来源，逗号分隔
func corsOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}

	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
