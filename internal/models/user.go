package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription tiers. Credits are granted per tier on initial purchase and
// on every successful renewal invoice.
const (
	TierFree     = "free"
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string         `gorm:"not null" json:"-"`
	Role             string         `gorm:"size:20;default:'user'" json:"role"`
	Credits          int64          `gorm:"not null;default:0" json:"credits"`
	Tier             string         `gorm:"size:20;not null;default:'free'" json:"tier"`
	ActiveSubscriber bool           `gorm:"not null;default:false" json:"active_subscriber"`
	StripeCustomerID string         `gorm:"size:255;index" json:"-"`
	ConnectAccountID string         `gorm:"size:255" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
