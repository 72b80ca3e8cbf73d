package alerts

import (
	"fmt"

	"github.com/getsentry/sentry-go"
)

// SentryAlerter raises operational alerts through Sentry.
type SentryAlerter struct{}

func NewSentryAlerter() *SentryAlerter {
	return &SentryAlerter{}
}

// PaymentFallback reports a checkout that could not use split routing.
// These payments need manual seller payout reconciliation, so they must be
// visible to operators, not just in logs.
func (a *SentryAlerter) PaymentFallback(itemID, reason string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("alert", "payment_fallback")
		scope.SetTag("item_id", itemID)
		sentry.CaptureMessage(fmt.Sprintf("checkout fell back to direct charge: %s", reason))
	})
}
