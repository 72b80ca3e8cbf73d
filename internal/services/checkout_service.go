package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/emoteforge/emoteforge-backend/internal/config"
	"github.com/emoteforge/emoteforge-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"gorm.io/gorm"
)

var (
	ErrEmoteNotFound  = errors.New("emote not found")
	ErrBundleNotFound = errors.New("bundle not found")
	ErrAlreadyOwned   = errors.New("you already own this item")
	ErrOwnListing     = errors.New("you cannot buy your own listing")
	ErrNotPurchasable = errors.New("item is not listed for sale")
	ErrPriceTooLow    = errors.New("price is below the checkout minimum")
	ErrUnknownTier    = errors.New("unknown subscription tier")
)

// MinCheckoutCents is the smallest amount the processor will charge.
const MinCheckoutCents = 100

// Fee constants in force at checkout time. Each component is rounded
// independently; the seller takes the remainder.
const (
	processorFeeRate  = 0.029
	processorFeeFixed = 30
	connectFeeRate    = 0.0025
	connectFeeFixed   = 25
	platformFeeRate   = 0.15
)

// FeeBreakdown is the per-component split of a checkout amount, in cents.
type FeeBreakdown struct {
	AmountCents  int64 `json:"amount_cents"`
	ProcessorFee int64 `json:"processor_fee"`
	ConnectFee   int64 `json:"connect_fee"`
	PlatformFee  int64 `json:"platform_fee"`
	SellerNet    int64 `json:"seller_net"`
}

// ComputeFees splits an amount into processor, connect and platform fees
// plus the seller remainder.
func ComputeFees(amount int64) FeeBreakdown {
	processor := int64(math.Round(float64(amount)*processorFeeRate)) + processorFeeFixed
	connect := int64(math.Round(float64(amount)*connectFeeRate)) + connectFeeFixed
	platform := int64(math.Round(float64(amount) * platformFeeRate))
	return FeeBreakdown{
		AmountCents:  amount,
		ProcessorFee: processor,
		ConnectFee:   connect,
		PlatformFee:  platform,
		SellerNet:    amount - processor - connect - platform,
	}
}

// ApplicationFee is the portion withheld from the seller on a split charge.
func (f FeeBreakdown) ApplicationFee() int64 {
	return f.ProcessorFee + f.ConnectFee + f.PlatformFee
}

// RoutingOutcome says how a checkout session was routed. Direct sessions
// carry the reason the split path was not taken; those payments need manual
// seller payout reconciliation.
type RoutingOutcome struct {
	Mode   string
	Reason string
}

// SessionResult is the outcome of building a checkout session.
type SessionResult struct {
	URL     string
	Routing RoutingOutcome
	Fees    FeeBreakdown
}

// Alerter receives operational alerts that need human follow-up.
type Alerter interface {
	PaymentFallback(itemID, reason string)
}

type CheckoutService struct {
	db      *gorm.DB
	cfg     *config.Config
	alerter Alerter
}

func NewCheckoutService(db *gorm.DB, cfg *config.Config, alerter Alerter) *CheckoutService {
	return &CheckoutService{db: db, cfg: cfg, alerter: alerter}
}

// CreateEmoteSession builds a checkout session for a single marketplace emote.
func (s *CheckoutService) CreateEmoteSession(ctx context.Context, buyerID, emoteID uuid.UUID) (*SessionResult, error) {
	var emote models.Emote
	if err := s.db.First(&emote, "id = ?", emoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmoteNotFound
		}
		return nil, fmt.Errorf("failed to fetch emote: %w", err)
	}

	if emote.Status != models.EmoteStatusMarketplace || emote.PriceCents == nil {
		return nil, ErrNotPurchasable
	}
	if emote.UserID == buyerID {
		return nil, ErrOwnListing
	}

	var owned int64
	if err := s.db.Model(&models.EmoteOwnership{}).
		Where("user_id = ? AND emote_id = ?", buyerID, emoteID).
		Count(&owned).Error; err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned > 0 {
		return nil, ErrAlreadyOwned
	}

	amount := *emote.PriceCents
	if amount < MinCheckoutCents {
		return nil, ErrPriceTooLow
	}

	var seller models.User
	if err := s.db.First(&seller, "id = ?", emote.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch seller: %w", err)
	}

	meta := map[string]string{
		"emote_id": emote.ID.String(),
		"buyer_id": buyerID.String(),
	}
	return s.createItemSession(ctx, buyerID, emote.Title, amount, &seller, meta)
}

// CreateBundleSession builds a checkout session for a bundle.
func (s *CheckoutService) CreateBundleSession(ctx context.Context, buyerID, bundleID uuid.UUID) (*SessionResult, error) {
	var bundle models.Bundle
	if err := s.db.First(&bundle, "id = ?", bundleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to fetch bundle: %w", err)
	}

	if bundle.Status != models.EmoteStatusMarketplace {
		return nil, ErrNotPurchasable
	}
	if bundle.UserID == buyerID {
		return nil, ErrOwnListing
	}

	var owned int64
	if err := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND bundle_id = ?", buyerID, bundleID).
		Count(&owned).Error; err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned > 0 {
		return nil, ErrAlreadyOwned
	}

	if bundle.PriceCents < MinCheckoutCents {
		return nil, ErrPriceTooLow
	}

	var seller models.User
	if err := s.db.First(&seller, "id = ?", bundle.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch seller: %w", err)
	}

	meta := map[string]string{
		"bundle_id": bundle.ID.String(),
		"buyer_id":  buyerID.String(),
	}
	return s.createItemSession(ctx, buyerID, bundle.Name, bundle.PriceCents, &seller, meta)
}

// createItemSession builds the Stripe session, preferring a destination
// split when the seller has a connected account. A split failure falls back
// to a plain session so the buyer can still pay; the fallback is reported
// to the alerter because the seller payout must then be settled by hand.
func (s *CheckoutService) createItemSession(ctx context.Context, buyerID uuid.UUID, itemName string, amount int64, seller *models.User, meta map[string]string) (*SessionResult, error) {
	fees := ComputeFees(amount)

	customerID, err := s.ensureCustomer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	build := func() *stripe.CheckoutSessionParams {
		params := &stripe.CheckoutSessionParams{
			Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
			Customer: stripe.String(customerID),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{
					PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
						Currency:   stripe.String(string(stripe.CurrencyUSD)),
						UnitAmount: stripe.Int64(amount),
						ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
							Name: stripe.String(itemName),
						},
					},
					Quantity: stripe.Int64(1),
				},
			},
			SuccessURL: stripe.String(s.cfg.FrontendURL + "/purchases?checkout=success"),
			CancelURL:  stripe.String(s.cfg.FrontendURL + "/marketplace?checkout=cancelled"),
		}
		for k, v := range meta {
			params.AddMetadata(k, v)
		}
		params.AddMetadata("amount_cents", strconv.FormatInt(fees.AmountCents, 10))
		params.AddMetadata("processor_fee", strconv.FormatInt(fees.ProcessorFee, 10))
		params.AddMetadata("connect_fee", strconv.FormatInt(fees.ConnectFee, 10))
		params.AddMetadata("platform_fee", strconv.FormatInt(fees.PlatformFee, 10))
		params.AddMetadata("seller_net", strconv.FormatInt(fees.SellerNet, 10))
		return params
	}

	routing := RoutingOutcome{Mode: models.RoutingSplit}

	if seller.ConnectAccountID != "" {
		params := build()
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(fees.ApplicationFee()),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(seller.ConnectAccountID),
			},
		}
		params.AddMetadata("routing", models.RoutingSplit)

		sess, err := session.New(params)
		if err == nil {
			return &SessionResult{URL: sess.URL, Routing: routing, Fees: fees}, nil
		}

		routing = RoutingOutcome{Mode: models.RoutingDirect, Reason: err.Error()}
		slog.Warn("split checkout failed, falling back to direct charge",
			"seller_id", seller.ID, "error", err)
	} else {
		routing = RoutingOutcome{Mode: models.RoutingDirect, Reason: "seller has no connected payout account"}
	}

	params := build()
	params.AddMetadata("routing", models.RoutingDirect)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if s.alerter != nil {
		s.alerter.PaymentFallback(meta["emote_id"]+meta["bundle_id"], routing.Reason)
	}
	slog.Warn("direct charge requires manual seller payout reconciliation",
		"seller_id", seller.ID, "session_id", sess.ID, "reason", routing.Reason)

	return &SessionResult{URL: sess.URL, Routing: routing, Fees: fees}, nil
}

// CreateSubscriptionSession builds a subscription-mode session for a credit
// plan tier.
func (s *CheckoutService) CreateSubscriptionSession(ctx context.Context, userID uuid.UUID, tier string) (*SessionResult, error) {
	priceID := s.priceForTier(tier)
	if priceID == "" {
		return nil, ErrUnknownTier
	}

	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.FrontendURL + "/account?checkout=success"),
		CancelURL:  stripe.String(s.cfg.FrontendURL + "/pricing?checkout=cancelled"),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("tier", tier)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription session: %w", err)
	}

	return &SessionResult{URL: sess.URL, Routing: RoutingOutcome{Mode: models.RoutingDirect}}, nil
}

func (s *CheckoutService) priceForTier(tier string) string {
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

// ensureCustomer finds or creates the Stripe customer for a user and stores
// the ID on the user row.
func (s *CheckoutService) ensureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}

	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	params.AddMetadata("user_id", user.ID.String())

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	if err := s.db.Model(&user).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", fmt.Errorf("failed to store stripe customer id: %w", err)
	}

	return cust.ID, nil
}
