package routes

import (
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/handlers"
	"github.com/chatlens/chatlens-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	usageHandler *handlers.UsageHandler,
	conversationHandler *handlers.ConversationHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limiter: 10 req/min per IP
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

	// Protected auth actions
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Webhooks — authenticated by body signature, never by JWT
	api.Post("/webhooks/payments", webhookHandler.HandlePaymentEvent)

	// Product surface (JWT required)
	protected := api.Group("", middleware.JWTProtected(cfg))
	protected.Get("/usage", usageHandler.Snapshot)
	protected.Post("/conversations", conversationHandler.Analyze)
	protected.Get("/conversations", conversationHandler.History)
	protected.Post("/conversations/:id/reanalyze", conversationHandler.Reanalyze)
	protected.Delete("/conversations/:id", conversationHandler.Delete)
}
