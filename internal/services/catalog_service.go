package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emoteforge/emoteforge-backend/internal/dto"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotOwner       = errors.New("you do not own this item")
	ErrInvalidListing = errors.New("a published emote needs an image and a price of at least 100 cents")
	ErrEmptyBundle    = errors.New("a bundle needs at least one emote")
)

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) CreateEmote(userID uuid.UUID, req *dto.CreateEmoteRequest) (*models.Emote, error) {
	title := req.Title
	if title == "" {
		title = "Untitled Emote"
	}

	emote := models.Emote{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Prompt:     req.Prompt,
		Style:      req.Style,
		ImageURL:   req.ImageURL,
		PriceCents: req.PriceCents,
		Status:     models.EmoteStatusDraft,
	}

	if err := s.db.Create(&emote).Error; err != nil {
		return nil, fmt.Errorf("failed to create emote: %w", err)
	}
	return &emote, nil
}

// Publish lists an emote for sale. Published emotes must carry an image and
// a price at or above the checkout minimum.
func (s *CatalogService) Publish(userID, emoteID uuid.UUID, req *dto.PublishEmoteRequest) (*models.Emote, error) {
	var emote models.Emote
	if err := s.db.First(&emote, "id = ?", emoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmoteNotFound
		}
		return nil, fmt.Errorf("failed to fetch emote: %w", err)
	}
	if emote.UserID != userID {
		return nil, ErrNotOwner
	}

	price := emote.PriceCents
	if req.PriceCents != nil {
		price = req.PriceCents
	}
	if price == nil || *price < MinCheckoutCents || emote.ImageURL == "" {
		return nil, ErrInvalidListing
	}

	status := models.EmoteStatusPublished
	if req.Marketplace {
		status = models.EmoteStatusMarketplace
	}

	if err := s.db.Model(&emote).Updates(map[string]interface{}{
		"price_cents": *price,
		"status":      status,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to publish emote: %w", err)
	}

	emote.PriceCents = price
	emote.Status = status
	return &emote, nil
}

func (s *CatalogService) GetEmote(emoteID uuid.UUID) (*models.Emote, error) {
	var emote models.Emote
	if err := s.db.First(&emote, "id = ?", emoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmoteNotFound
		}
		return nil, fmt.Errorf("failed to fetch emote: %w", err)
	}
	return &emote, nil
}

func (s *CatalogService) ListUserEmotes(userID uuid.UUID) ([]models.Emote, error) {
	var emotes []models.Emote
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&emotes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch emotes: %w", err)
	}
	return emotes, nil
}

// ListMarketplace returns one page of marketplace emotes, optionally
// filtered by a case-insensitive substring match over title and prompt.
func (s *CatalogService) ListMarketplace(page, pageSize int, search string) ([]models.Emote, int64, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Emote{}).Where("status = ?", models.EmoteStatusMarketplace)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(prompt) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, false, fmt.Errorf("failed to count emotes: %w", err)
	}

	var emotes []models.Emote
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&emotes).Error; err != nil {
		return nil, 0, false, fmt.Errorf("failed to fetch emotes: %w", err)
	}

	hasMore := int64(page*pageSize) < total
	return emotes, total, hasMore, nil
}

// OwnsEmote reports whether the user holds an entitlement for the emote.
func (s *CatalogService) OwnsEmote(userID, emoteID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.EmoteOwnership{}).
		Where("user_id = ? AND emote_id = ?", userID, emoteID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return count > 0, nil
}

// OwnsBundle reports whether the user has a settled purchase of the bundle.
func (s *CatalogService) OwnsBundle(userID, bundleID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND bundle_id = ?", userID, bundleID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check bundle ownership: %w", err)
	}
	return count > 0, nil
}

func (s *CatalogService) ListPurchases(userID uuid.UUID) ([]models.Purchase, error) {
	var purchases []models.Purchase
	if err := s.db.Where("buyer_id = ?", userID).
		Order("created_at DESC").Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch purchases: %w", err)
	}
	return purchases, nil
}

func (s *CatalogService) CreateBundle(userID uuid.UUID, req *dto.CreateBundleRequest) (*models.Bundle, error) {
	if len(req.EmoteIDs) == 0 {
		return nil, ErrEmptyBundle
	}

	var emotes []models.Emote
	if err := s.db.Where("id IN ? AND user_id = ?", req.EmoteIDs, userID).
		Find(&emotes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bundle emotes: %w", err)
	}
	if len(emotes) != len(req.EmoteIDs) {
		return nil, ErrNotOwner
	}

	bundle := models.Bundle{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Status:     models.EmoteStatusMarketplace,
		Emotes:     emotes,
	}
	if bundle.Name == "" {
		bundle.Name = "Untitled Bundle"
	}

	if err := s.db.Create(&bundle).Error; err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}
	return &bundle, nil
}

func (s *CatalogService) GetBundle(bundleID uuid.UUID) (*models.Bundle, error) {
	var bundle models.Bundle
	if err := s.db.Preload("Emotes").First(&bundle, "id = ?", bundleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to fetch bundle: %w", err)
	}
	return &bundle, nil
}

func (s *CatalogService) ListBundles(page, pageSize int) ([]models.Bundle, int64, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Bundle{}).Where("status = ?", models.EmoteStatusMarketplace)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, false, fmt.Errorf("failed to count bundles: %w", err)
	}

	var bundles []models.Bundle
	if err := query.Preload("Emotes").Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bundles).Error; err != nil {
		return nil, 0, false, fmt.Errorf("failed to fetch bundles: %w", err)
	}

	return bundles, total, int64(page*pageSize) < total, nil
}
