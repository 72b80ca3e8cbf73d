package handlers

import (
	"errors"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/middleware"
	"github.com/emoteforge/emoteforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListMarketplace is public: paginated marketplace emotes with optional
// substring search.
func (h *CatalogHandler) ListMarketplace(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	search := c.Query("q")

	emotes, total, hasMore, err := h.catalogService.ListMarketplace(page, pageSize, search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list emotes",
		})
	}

	return c.JSON(dto.EmoteListResponse{
		Emotes:   emotes,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore,
	})
}

func (h *CatalogHandler) GetEmote(c *fiber.Ctx) error {
	emoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid emote id",
		})
	}

	emote, err := h.catalogService.GetEmote(emoteID)
	if err != nil {
		if errors.Is(err, services.ErrEmoteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch emote",
		})
	}
	return c.JSON(emote)
}

func (h *CatalogHandler) CreateEmote(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateEmoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	emote, err := h.catalogService.CreateEmote(userID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create emote",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(emote)
}

func (h *CatalogHandler) PublishEmote(c *fiber.Ctx) error {
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

	var req dto.PublishEmoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	emote, err := h.catalogService.Publish(userID, emoteID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmoteNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidListing):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to publish emote",
		})
	}
	return c.JSON(emote)
}

func (h *CatalogHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	emotes, err := h.catalogService.ListUserEmotes(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list emotes",
		})
	}
	return c.JSON(fiber.Map{"emotes": emotes})
}

func (h *CatalogHandler) ListPurchases(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	purchases, err := h.catalogService.ListPurchases(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list purchases",
		})
	}
	return c.JSON(fiber.Map{"purchases": purchases})
}

// CheckEmoteOwnership reports whether the caller holds an entitlement for
// the emote.
func (h *CatalogHandler) CheckEmoteOwnership(c *fiber.Ctx) error {
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

	owned, err := h.catalogService.OwnsEmote(userID, emoteID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check ownership",
		})
	}
	return c.JSON(fiber.Map{"owned": owned})
}

func (h *CatalogHandler) CheckBundleOwnership(c *fiber.Ctx) error {
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

	owned, err := h.catalogService.OwnsBundle(userID, bundleID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check ownership",
		})
	}
	return c.JSON(fiber.Map{"owned": owned})
}

func (h *CatalogHandler) CreateBundle(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateBundleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	bundle, err := h.catalogService.CreateBundle(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyBundle):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create bundle",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(bundle)
}

func (h *CatalogHandler) GetBundle(c *fiber.Ctx) error {
	bundleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid bundle id",
		})
	}

	bundle, err := h.catalogService.GetBundle(bundleID)
	if err != nil {
		if errors.Is(err, services.ErrBundleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch bundle",
		})
	}
	return c.JSON(bundle)
}

func (h *CatalogHandler) ListBundles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	bundles, total, hasMore, err := h.catalogService.ListBundles(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list bundles",
		})
	}
	return c.JSON(fiber.Map{
		"bundles":  bundles,
		"total":    total,
		"page":     page,
		"has_more": hasMore,
	})
}
