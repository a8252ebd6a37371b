package routes

import (
	"time"

	"github.com/caroarena/moderation-backend/internal/config"
	"github.com/caroarena/moderation-backend/internal/handlers"
	"github.com/caroarena/moderation-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
	banHandler *handlers.BanHandler,
	appealHandler *handlers.AppealHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Player endpoints (protected)
	api.Post("/reports", middleware.JWTProtected(cfg), moderationHandler.CreateReport)
	api.Get("/me/ban-status", middleware.JWTProtected(cfg), banHandler.MyBanStatus)
	api.Post("/appeals", middleware.JWTProtected(cfg), appealHandler.CreateAppeal)
	api.Get("/me/appeals", middleware.JWTProtected(cfg), appealHandler.MyAppeals)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/reports", moderationHandler.ListReports)
	admin.Get("/reports/queue", moderationHandler.AppealQueue)
	admin.Get("/reports/:id", moderationHandler.GetReport)
	admin.Post("/reports/:id/process", moderationHandler.ProcessReport)
	admin.Put("/reports/:id", moderationHandler.UpdateReport)
	admin.Get("/reports/:id/appeals", appealHandler.AppealsForReport)

	admin.Post("/bans", banHandler.ApplyBan)
	admin.Post("/bans/:id/lift", banHandler.LiftBan)
	admin.Get("/users/:id/ban-status", banHandler.UserBanStatus)
	admin.Get("/users/:id/bans/active", banHandler.ActiveBans)
	admin.Get("/users/:id/bans", banHandler.BanHistory)

	admin.Get("/appeals/pending", appealHandler.PendingAppeals)
	admin.Get("/appeals/:id", appealHandler.GetAppeal)
	admin.Put("/appeals/:id", appealHandler.ProcessAppeal)
}
