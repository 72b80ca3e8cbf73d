package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment routing modes recorded on a purchase. Split purchases carried a
// Connect transfer to the seller; direct purchases need manual payout
// reconciliation.
const (
	RoutingSplit  = "split"
	RoutingDirect = "direct"
)

// Purchase records a settled checkout. Exactly one of EmoteID / BundleID is
// set. The fee columns store the breakdown computed at checkout time so the
// ledger survives later fee-constant changes.
type Purchase struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"buyer_id"`
	EmoteID         *uuid.UUID `gorm:"type:uuid;index" json:"emote_id,omitempty"`
	BundleID        *uuid.UUID `gorm:"type:uuid;index" json:"bundle_id,omitempty"`
	PaymentIntentID string     `gorm:"size:255;index" json:"payment_intent_id"`
	AmountCents     int64      `gorm:"not null" json:"amount_cents"`
	ProcessorFee    int64      `json:"processor_fee"`
	ConnectFee      int64      `json:"connect_fee"`
	PlatformFee     int64      `json:"platform_fee"`
	SellerNet       int64      `json:"seller_net"`
	Routing         string     `gorm:"size:10;not null;default:'direct'" json:"routing"`
	CreatedAt       time.Time  `json:"created_at"`
	Buyer           User       `gorm:"foreignKey:BuyerID" json:"-"`
}

// EmoteOwnership is the entitlement row: the named user owns the named
// emote. Bundle purchases fan out into one row per contained emote.
type EmoteOwnership struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ownerships_user_emote" json:"user_id"`
	EmoteID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ownerships_user_emote" json:"emote_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Emote     Emote     `gorm:"foreignKey:EmoteID" json:"-"`
}
