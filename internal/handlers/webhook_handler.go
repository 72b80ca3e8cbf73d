package handlers

import (
	"errors"
	"log/slog"

	"github.com/emoteforge/emoteforge-backend/internal/config"
	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79/webhook"
)

type WebhookHandler struct {
	billingService *services.BillingService
	cfg            *config.Config
}

func NewWebhookHandler(billingService *services.BillingService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{billingService: billingService, cfg: cfg}
}

// HandleStripe verifies the event signature against the raw body, then
// applies the event. Signature verification is the authentication for this
// endpoint.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	if h.cfg.StripeWebhookSecret == "" {
		slog.Error("stripe webhook secret not configured")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	event, err := webhook.ConstructEventWithOptions(
		c.Body(),
		c.Get("Stripe-Signature"),
		h.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		slog.Warn("stripe webhook signature verification failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	if err := h.billingService.HandleEvent(&event); err != nil {
		if errors.Is(err, services.ErrDuplicateEvent) {
			return c.JSON(fiber.Map{"received": true, "status": "duplicate"})
		}
		slog.Error("webhook processing failed", "event_id", event.ID, "event_type", event.Type, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("webhook processed", "event_id", event.ID, "event_type", event.Type)
	return c.JSON(fiber.Map{"received": true, "status": "processed"})
}
