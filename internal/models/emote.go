package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Emote listing statuses. A draft has been generated but not listed;
// published emotes are visible to their owner's storefront; marketplace
// emotes are purchasable by anyone.
const (
	EmoteStatusDraft       = "draft"
	EmoteStatusPublished   = "published"
	EmoteStatusMarketplace = "marketplace"
)

type Emote struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Prompt     string         `gorm:"type:text" json:"prompt"`
	Style      string         `gorm:"size:50" json:"style"`
	ImageURL   string         `gorm:"size:1024" json:"image_url"`
	PreviewURL string         `gorm:"size:1024" json:"preview_url"`
	PriceCents *int64         `json:"price_cents"`
	Status     string         `gorm:"size:20;not null;default:'draft';index" json:"status"`
	GenParams  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"gen_params"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	User       User           `gorm:"foreignKey:UserID" json:"-"`
}
