package router

import (
	"jishi/internal/handlers"
	"jishi/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册全部路由。
// 结构：全局接口 -> 账号 -> 租户作用域 (/t/:slug) -> 平台管理。
func RegisterRoutes(r *gin.Engine) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler()
	tenantHandler := handlers.NewTenantHandler()
	categoryHandler := handlers.NewCategoryHandler()
	threadHandler := handlers.NewThreadHandler()
	commentHandler := handlers.NewCommentHandler()
	listingHandler := handlers.NewListingHandler()
	orderHandler := handlers.NewOrderHandler()
	reactionHandler := handlers.NewReactionHandler()
	notificationHandler := handlers.NewNotificationHandler()
	moderationHandler := handlers.NewModerationHandler()
	adminHandler := handlers.NewAdminHandler()
	webhookHandler := handlers.NewWebhookHandler()

	r.GET("/health", healthHandler.Health)

	// 支付回调：新地址 + 旧地址永久跳转
	r.POST("/webhooks/stripe", webhookHandler.Stripe)
	r.Any("/stripe/webhook", webhookHandler.StripeLegacy)

	// 账号
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/activate", authHandler.Activate)
		auth.POST("/session", authHandler.Login)
		auth.GET("/session", authHandler.Whoami)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)

		authed := auth.Group("", middleware.AuthRequired())
		{
			authed.POST("/logout", authHandler.Logout)
			authed.GET("/sessions", authHandler.ListSessions)
			authed.DELETE("/sessions/:id", authHandler.RevokeSession)
		}
	}

	r.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
	r.PUT("/me/preferences", middleware.AuthRequired(), authHandler.UpdateProfile)

	// 社区
	r.GET("/tenants", tenantHandler.List)
	r.POST("/tenants", middleware.AuthRequired(), tenantHandler.Create)

	tenant := r.Group("/t/:slug", middleware.ResolveTenant())
	{
		tenant.GET("", tenantHandler.Show)
		tenant.GET("/categories", categoryHandler.List)
		tenant.GET("/threads", threadHandler.Feed)
		tenant.GET("/threads/:tid", threadHandler.Show)
		tenant.GET("/threads/:tid/comments", commentHandler.List)
		tenant.GET("/listings", listingHandler.Feed)
		tenant.GET("/listings/:lid", listingHandler.Show)

		member := tenant.Group("", middleware.AuthRequired())
		{
			member.POST("/join", tenantHandler.Join)
			member.POST("/leave", tenantHandler.Leave)
			member.POST("/reports", middleware.MemberRequired(), moderationHandler.Report)

			// 内容写入需要成员身份，封禁/禁言由服务层闸门拦截
			member.POST("/threads", middleware.MemberRequired(), threadHandler.Create)
			member.PUT("/threads/:tid", middleware.MemberRequired(), threadHandler.Update)
			member.DELETE("/threads/:tid", middleware.MemberRequired(), threadHandler.Remove)
			member.POST("/threads/:tid/comments", middleware.MemberRequired(), commentHandler.Create)
			member.DELETE("/comments/:cid", middleware.MemberRequired(), commentHandler.Remove)
			member.POST("/listings", middleware.MemberRequired(), listingHandler.Create)
			member.PUT("/listings/:lid", middleware.MemberRequired(), listingHandler.Update)
			member.DELETE("/listings/:lid", middleware.MemberRequired(), listingHandler.Remove)
			member.POST("/reactions/:type/:id/:kind", middleware.MemberRequired(), reactionHandler.Toggle)

			// 购买不要求成员身份，任何登录用户都可以下单
			member.POST("/listings/:lid/checkout", orderHandler.Checkout)
		}

		moderator := tenant.Group("", middleware.AuthRequired(), middleware.ModeratorRequired())
		{
			moderator.GET("/members", tenantHandler.Members)
			moderator.POST("/categories", categoryHandler.Create)
			moderator.PUT("/categories/:id", categoryHandler.Update)
			moderator.POST("/threads/:tid/pin", threadHandler.Pin)
			moderator.POST("/moderation/punish", moderationHandler.Punish)
			moderator.POST("/moderation/revoke", moderationHandler.Revoke)
			moderator.GET("/moderation/punishments", moderationHandler.Punishments)
			moderator.GET("/reports", moderationHandler.Reports)
			moderator.PUT("/reports/:id", moderationHandler.ResolveReport)
		}

		owner := tenant.Group("", middleware.AuthRequired(), middleware.OwnerRequired())
		{
			owner.PUT("/members/role", tenantHandler.GrantRole)
		}
	}

	// 我的订单和通知
	authorized := r.Group("", middleware.AuthRequired())
	{
		authorized.GET("/orders", orderHandler.List)
		authorized.GET("/orders/:oid", orderHandler.Show)
		authorized.GET("/notifications", notificationHandler.List)
		authorized.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		authorized.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Remove)
	}

	// 平台管理
	admin := r.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/webhooks/failed", adminHandler.FailedWebhooks)
		admin.PUT("/users/:id/role", adminHandler.SetUserRole)
	}
}
