package dto

import (
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
)

type CreateEmoteRequest struct {
	Title      string `json:"title"`
	Prompt     string `json:"prompt"`
	Style      string `json:"style"`
	ImageURL   string `json:"image_url"`
	PriceCents *int64 `json:"price_cents"`
}

type PublishEmoteRequest struct {
	PriceCents  *int64 `json:"price_cents"`
	Marketplace bool   `json:"marketplace"`
}

type CreateBundleRequest struct {
	Name       string      `json:"name"`
	PriceCents int64       `json:"price_cents"`
	EmoteIDs   []uuid.UUID `json:"emote_ids"`
}

type EmoteListResponse struct {
	Emotes   []models.Emote `json:"emotes"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}
