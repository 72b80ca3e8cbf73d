package models

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	StripeSubscriptionID string    `gorm:"size:255;index" json:"-"`
	PriceID              string    `gorm:"size:255" json:"price_id"`
	Tier                 string    `gorm:"size:20;not null;default:'free'" json:"tier"`
	Status               string    `gorm:"not null;default:'inactive';size:50" json:"status"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	User                 User      `gorm:"foreignKey:UserID" json:"-"`
}
