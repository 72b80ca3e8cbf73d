package handlers

import (
	"errors"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/middleware"
	"github.com/emoteforge/emoteforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type GenerationHandler struct {
	generationService *services.GenerationService
}

func NewGenerationHandler(generationService *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	emote, remaining, err := h.generationService.Generate(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyPrompt):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInsufficientCredits):
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrGenerationFailed), errors.Is(err, services.ErrStorageFailed):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
				Error: true, Message: "Generation failed, credit refunded",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.GenerateResponse{
		Emote:            *emote,
		CreditsRemaining: remaining,
	})
}
