package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEvent is the idempotency record for Stripe webhook deliveries.
// The row is inserted in the same transaction as the event's side effects;
// a unique-key conflict on EventID means the event was already applied and
// the redelivery must be acknowledged without re-applying anything.
type WebhookEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     string         `gorm:"size:255;not null;uniqueIndex" json:"event_id"`
	EventType   string         `gorm:"size:100;not null;index" json:"event_type"`
	Payload     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	ProcessedAt time.Time      `gorm:"not null" json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}
