package models

import (
	"time"

	"github.com/google/uuid"
)

// Bundle is a priced collection of emotes sold as a single checkout item.
type Bundle struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	Status     string    `gorm:"size:20;not null;default:'draft';index" json:"status"`
	Emotes     []Emote   `gorm:"many2many:bundle_emotes" json:"emotes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
}
