package handlers

import (
	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminHandler exposes operational read views: the purchase ledger and the
// webhook event log.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) ListPurchases(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	const pageSize = 50

	var purchases []models.Purchase
	if err := h.db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&purchases).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list purchases",
		})
	}
	return c.JSON(fiber.Map{"purchases": purchases, "page": page})
}

func (h *AdminHandler) ListWebhookEvents(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	const pageSize = 50

	var events []models.WebhookEvent
	if err := h.db.Order("processed_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list webhook events",
		})
	}
	return c.JSON(fiber.Map{"events": events, "page": page})
}
