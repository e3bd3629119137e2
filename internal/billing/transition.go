package billing

import (
	"github.com/foratask/foratask-billing/pkg/enums"
)

// Event names the external triggers that can move a subscription between
// statuses. Membership changes recompute the cached price but never touch
// the status, so they are not listed here.
type Event string

const (
	EventExpiryDue        Event = "expiry_due"
	EventPaymentConfirmed Event = "payment_confirmed"
	EventCancel           Event = "cancel"
)

// Apply is the single transition table. It returns the status after the
// event and whether the event applied; an event invalid for the current
// status leaves it unchanged and reports applied=false so callers can
// surface the skip instead of dropping it.
func Apply(status enums.SubscriptionStatus, event Event) (enums.SubscriptionStatus, bool) {
	switch event {
	case EventExpiryDue:
		if status == enums.SubscriptionStatusTrial || status == enums.SubscriptionStatusActive {
			return enums.SubscriptionStatusExpired, true
		}
	case EventPaymentConfirmed:
		// Early payment during trial and renewal after expiry both land on
		// active; a payment against an already-active subscription extends
		// the period, which is still an applied transition.
		if status != enums.SubscriptionStatusCancelled {
			return enums.SubscriptionStatusActive, true
		}
	case EventCancel:
		if !status.IsTerminal() {
			return enums.SubscriptionStatusCancelled, true
		}
	}
	return status, false
}
