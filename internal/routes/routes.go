package routes

import (
	"time"

	"github.com/emoteforge/emoteforge-backend/internal/config"
	"github.com/emoteforge/emoteforge-backend/internal/handlers"
	"github.com/emoteforge/emoteforge-backend/internal/middleware"
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
	catalogHandler *handlers.CatalogHandler,
	checkoutHandler *handlers.CheckoutHandler,
	webhookHandler *handlers.WebhookHandler,
	generationHandler *handlers.GenerationHandler,
	adminHandler *handlers.AdminHandler,
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

	// Auth endpoints are public, with a stricter rate limit
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
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Marketplace reads are public
	api.Get("/emotes", catalogHandler.ListMarketplace)
	api.Get("/emotes/mine", middleware.JWTProtected(cfg), catalogHandler.ListMine)
	api.Get("/emotes/:id", catalogHandler.GetEmote)
	api.Get("/emotes/:id/owned", middleware.JWTProtected(cfg), catalogHandler.CheckEmoteOwnership)
	api.Post("/emotes", middleware.JWTProtected(cfg), catalogHandler.CreateEmote)
	api.Post("/emotes/:id/publish", middleware.JWTProtected(cfg), catalogHandler.PublishEmote)

	api.Get("/bundles", catalogHandler.ListBundles)
	api.Get("/bundles/:id", catalogHandler.GetBundle)
	api.Get("/bundles/:id/owned", middleware.JWTProtected(cfg), catalogHandler.CheckBundleOwnership)
	api.Post("/bundles", middleware.JWTProtected(cfg), catalogHandler.CreateBundle)

	api.Post("/generate", middleware.JWTProtected(cfg), generationHandler.Generate)

	checkout := api.Group("/checkout", middleware.JWTProtected(cfg))
	checkout.Post("/emote/:id", checkoutHandler.EmoteCheckout)
	checkout.Post("/bundle/:id", checkoutHandler.BundleCheckout)
	checkout.Post("/subscription", checkoutHandler.SubscriptionCheckout)

	api.Get("/purchases", middleware.JWTProtected(cfg), catalogHandler.ListPurchases)

	// Webhooks are authenticated by signature, not JWT
	api.Post("/webhooks/stripe", webhookHandler.HandleStripe)

	// Admin ops views
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/purchases", adminHandler.ListPurchases)
	admin.Get("/webhook-events", adminHandler.ListWebhookEvents)
}
