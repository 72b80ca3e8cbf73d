package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emoteforge/emoteforge-backend/internal/config"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrDuplicateEvent means this webhook delivery was already applied. The
// handler acknowledges it with 200 so the processor stops retrying.
var ErrDuplicateEvent = errors.New("webhook event already processed")

// Credits granted per billing cycle for each paid tier.
var tierCredits = map[string]int64{
	models.TierBasic:    100,
	models.TierStandard: 250,
	models.TierPremium:  750,
}

type BillingService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewBillingService(db *gorm.DB, cfg *config.Config) *BillingService {
	return &BillingService{db: db, cfg: cfg}
}

// HandleEvent applies the state mutation for a verified Stripe event.
// All side effects run in one transaction whose first statement inserts the
// event ID into the webhook_events table; a unique-key conflict there means
// a redelivery and nothing is re-applied. A failure later in the transaction
// rolls the idempotency row back too, so the processor's retry starts clean.
func (s *BillingService) HandleEvent(event *stripe.Event) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		record := models.WebhookEvent{
			ID:          uuid.New(),
			EventID:     event.ID,
			EventType:   string(event.Type),
			Payload:     datatypes.JSON(event.Data.Raw),
			ProcessedAt: time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEvent
			}
			return fmt.Errorf("failed to record webhook event: %w", err)
		}

		switch event.Type {
		case "checkout.session.completed":
			return s.handleSessionCompleted(tx, event)
		case "invoice.payment_succeeded":
			return s.handleInvoicePaid(tx, event)
		case "invoice.payment_failed":
			return s.handleInvoiceFailed(tx, event)
		case "customer.subscription.deleted":
			return s.handleSubscriptionDeleted(tx, event)
		case "customer.subscription.updated":
			return s.handleSubscriptionUpdated(tx, event)
		default:
			return nil
		}
	})
}

func (s *BillingService) handleSessionCompleted(tx *gorm.DB, event *stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	if sess.Metadata["emote_id"] != "" || sess.Metadata["bundle_id"] != "" {
		return s.settleItemPurchase(tx, &sess)
	}
	if sess.Mode == stripe.CheckoutSessionModeSubscription {
		return s.activateSubscription(tx, &sess)
	}
	return nil
}

// settleItemPurchase creates the Purchase ledger row and the ownership
// entitlements for an emote or bundle checkout.
func (s *BillingService) settleItemPurchase(tx *gorm.DB, sess *stripe.CheckoutSession) error {
	buyerID, err := uuid.Parse(sess.Metadata["buyer_id"])
	if err != nil {
		return fmt.Errorf("invalid buyer_id in session metadata: %w", err)
	}

	purchase := models.Purchase{
		ID:           uuid.New(),
		BuyerID:      buyerID,
		AmountCents:  sess.AmountTotal,
		ProcessorFee: metaInt(sess.Metadata, "processor_fee"),
		ConnectFee:   metaInt(sess.Metadata, "connect_fee"),
		PlatformFee:  metaInt(sess.Metadata, "platform_fee"),
		SellerNet:    metaInt(sess.Metadata, "seller_net"),
		Routing:      sess.Metadata["routing"],
	}
	if purchase.Routing == "" {
		purchase.Routing = models.RoutingDirect
	}
	if sess.PaymentIntent != nil {
		purchase.PaymentIntentID = sess.PaymentIntent.ID
	}

	var emoteIDs []uuid.UUID

	if raw := sess.Metadata["emote_id"]; raw != "" {
		emoteID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid emote_id in session metadata: %w", err)
		}
		purchase.EmoteID = &emoteID
		emoteIDs = append(emoteIDs, emoteID)
	} else {
		bundleID, err := uuid.Parse(sess.Metadata["bundle_id"])
		if err != nil {
			return fmt.Errorf("invalid bundle_id in session metadata: %w", err)
		}
		purchase.BundleID = &bundleID

		var bundle models.Bundle
		if err := tx.Preload("Emotes").First(&bundle, "id = ?", bundleID).Error; err != nil {
			return fmt.Errorf("failed to fetch bundle for settlement: %w", err)
		}
		for _, emote := range bundle.Emotes {
			emoteIDs = append(emoteIDs, emote.ID)
		}
	}

	if err := tx.Create(&purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	for _, emoteID := range emoteIDs {
		ownership := models.EmoteOwnership{ID: uuid.New(), UserID: buyerID, EmoteID: emoteID}
		if err := tx.Where("user_id = ? AND emote_id = ?", buyerID, emoteID).
			FirstOrCreate(&ownership).Error; err != nil {
			return fmt.Errorf("failed to create ownership: %w", err)
		}
	}

	return nil
}

// activateSubscription grants the plan's credits, sets the tier and the
// active flag, and creates the Subscription row.
func (s *BillingService) activateSubscription(tx *gorm.DB, sess *stripe.CheckoutSession) error {
	userID, err := uuid.Parse(sess.Metadata["user_id"])
	if err != nil {
		return fmt.Errorf("invalid user_id in session metadata: %w", err)
	}

	tier := sess.Metadata["tier"]
	credits, ok := tierCredits[tier]
	if !ok {
		return fmt.Errorf("no credit mapping for tier %q", tier)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"credits":           gorm.Expr("credits + ?", credits),
			"tier":              tier,
			"active_subscriber": true,
		}).Error; err != nil {
		return fmt.Errorf("failed to grant subscription credits: %w", err)
	}

	sub := models.Subscription{
		ID:     uuid.New(),
		UserID: userID,
		Tier:   tier,
		Status: "active",
	}
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = sess.Subscription.ID
	}
	sub.PriceID = s.priceForTier(tier)

	if err := tx.Create(&sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// handleInvoicePaid grants the plan's credits for a renewal and refreshes
// the period end.
func (s *BillingService) handleInvoicePaid(tx *gorm.DB, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == nil {
		return nil
	}

	var sub models.Subscription
	err := tx.Where("stripe_subscription_id = ?", invoice.Subscription.ID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First invoice can arrive before checkout.session.completed; the
		// activation branch will grant the initial credits.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	credits := tierCredits[sub.Tier]
	if err := tx.Model(&models.User{}).Where("id = ?", sub.UserID).
		Updates(map[string]interface{}{
			"credits":           gorm.Expr("credits + ?", credits),
			"active_subscriber": true,
		}).Error; err != nil {
		return fmt.Errorf("failed to grant renewal credits: %w", err)
	}

	return tx.Model(&sub).Updates(map[string]interface{}{
		"status":             "active",
		"current_period_end": time.Unix(invoice.PeriodEnd, 0).UTC(),
	}).Error
}

func (s *BillingService) handleInvoiceFailed(tx *gorm.DB, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == nil {
		return nil
	}

	var sub models.Subscription
	if err := tx.Where("stripe_subscription_id = ?", invoice.Subscription.ID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", sub.UserID).
		Update("active_subscriber", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	return tx.Model(&sub).Update("status", "past_due").Error
}

func (s *BillingService) handleSubscriptionDeleted(tx *gorm.DB, event *stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	var sub models.Subscription
	if err := tx.Where("stripe_subscription_id = ?", stripeSub.ID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", sub.UserID).
		Updates(map[string]interface{}{
			"tier":              models.TierFree,
			"active_subscriber": false,
		}).Error; err != nil {
		return fmt.Errorf("failed to downgrade user: %w", err)
	}
	return tx.Model(&sub).Update("status", "cancelled").Error
}

// handleSubscriptionUpdated recomputes the active flag and tier from the
// subscription's current status and price.
func (s *BillingService) handleSubscriptionUpdated(tx *gorm.DB, event *stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	var sub models.Subscription
	if err := tx.Where("stripe_subscription_id = ?", stripeSub.ID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	active := stripeSub.Status == stripe.SubscriptionStatusActive ||
		stripeSub.Status == stripe.SubscriptionStatusTrialing

	tier := sub.Tier
	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 && stripeSub.Items.Data[0].Price != nil {
		if t := s.tierForPrice(stripeSub.Items.Data[0].Price.ID); t != "" {
			tier = t
		}
	}

	userUpdates := map[string]interface{}{
		"active_subscriber": active,
	}
	if active {
		userUpdates["tier"] = tier
	} else {
		userUpdates["tier"] = models.TierFree
	}
	if err := tx.Model(&models.User{}).Where("id = ?", sub.UserID).
		Updates(userUpdates).Error; err != nil {
		return fmt.Errorf("failed to update user subscription state: %w", err)
	}

	subUpdates := map[string]interface{}{
		"status": string(stripeSub.Status),
		"tier":   tier,
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		subUpdates["current_period_end"] = time.Unix(stripeSub.CurrentPeriodEnd, 0).UTC()
	}
	return tx.Model(&sub).Updates(subUpdates).Error
}

func (s *BillingService) priceForTier(tier string) string {
	switch tier {
	case models.TierBasic:
		return s.cfg.StripePriceBasic
	case models.TierStandard:
		return s.cfg.StripePriceStandard
	case models.TierPremium:
		return s.cfg.StripePricePremium
	}
	return ""
}

func (s *BillingService) tierForPrice(priceID string) string {
	switch priceID {
	case "":
		return ""
	case s.cfg.StripePriceBasic:
		return models.TierBasic
	case s.cfg.StripePriceStandard:
		return models.TierStandard
	case s.cfg.StripePricePremium:
		return models.TierPremium
	}
	return ""
}

func metaInt(meta map[string]string, key string) int64 {
	v, err := strconv.ParseInt(meta[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
