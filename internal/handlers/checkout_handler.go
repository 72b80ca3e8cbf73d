package handlers

import (
	"errors"
	"log/slog"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/middleware"
	"github.com/emoteforge/emoteforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) EmoteCheckout(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	emoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid emote id",
		})
	}

	result, err := h.checkoutService.CreateEmoteSession(c.Context(), userID, emoteID)
	if err != nil {
		return h.mapCheckoutError(c, err)
	}
	return c.JSON(dto.CheckoutResponse{URL: result.URL, Routing: result.Routing.Mode})
}

func (h *CheckoutHandler) BundleCheckout(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	bundleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid bundle id",
		})
	}

	result, err := h.checkoutService.CreateBundleSession(c.Context(), userID, bundleID)
	if err != nil {
		return h.mapCheckoutError(c, err)
	}
	return c.JSON(dto.CheckoutResponse{URL: result.URL, Routing: result.Routing.Mode})
}

func (h *CheckoutHandler) SubscriptionCheckout(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubscriptionCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.checkoutService.CreateSubscriptionSession(c.Context(), userID, req.Tier)
	if err != nil {
		if errors.Is(err, services.ErrUnknownTier) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("subscription checkout failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to start checkout",
		})
	}
	return c.JSON(dto.CheckoutResponse{URL: result.URL})
}

func (h *CheckoutHandler) mapCheckoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmoteNotFound), errors.Is(err, services.ErrBundleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyOwned), errors.Is(err, services.ErrOwnListing):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotPurchasable), errors.Is(err, services.ErrPriceTooLow):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	slog.Error("checkout failed", "error", err)
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
		Error: true, Message: "Failed to start checkout",
	})
}
