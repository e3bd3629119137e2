package billing

import (
	"testing"

	"github.com/foratask/foratask-billing/pkg/enums"
)

func TestApplyTransitionTable(t *testing.T) {
	cases := []struct {
		name     string
		from     enums.SubscriptionStatus
		event    Event
		expected enums.SubscriptionStatus
		applied  bool
	}{
		{"trial expires", enums.SubscriptionStatusTrial, EventExpiryDue, enums.SubscriptionStatusExpired, true},
		{"active expires", enums.SubscriptionStatusActive, EventExpiryDue, enums.SubscriptionStatusExpired, true},
		{"expired expiry is noop", enums.SubscriptionStatusExpired, EventExpiryDue, enums.SubscriptionStatusExpired, false},
		{"cancelled expiry is noop", enums.SubscriptionStatusCancelled, EventExpiryDue, enums.SubscriptionStatusCancelled, false},

		{"early payment during trial", enums.SubscriptionStatusTrial, EventPaymentConfirmed, enums.SubscriptionStatusActive, true},
		{"renewal from expired", enums.SubscriptionStatusExpired, EventPaymentConfirmed, enums.SubscriptionStatusActive, true},
		{"payment extends active", enums.SubscriptionStatusActive, EventPaymentConfirmed, enums.SubscriptionStatusActive, true},
		{"payment after cancel is noop", enums.SubscriptionStatusCancelled, EventPaymentConfirmed, enums.SubscriptionStatusCancelled, false},

		{"cancel from trial", enums.SubscriptionStatusTrial, EventCancel, enums.SubscriptionStatusCancelled, true},
		{"cancel from active", enums.SubscriptionStatusActive, EventCancel, enums.SubscriptionStatusCancelled, true},
		{"cancel from expired", enums.SubscriptionStatusExpired, EventCancel, enums.SubscriptionStatusCancelled, true},
		{"cancel twice is noop", enums.SubscriptionStatusCancelled, EventCancel, enums.SubscriptionStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, applied := Apply(tc.from, tc.event)
			if got != tc.expected {
				t.Fatalf("Apply(%s, %s) = %s, expected %s", tc.from, tc.event, got, tc.expected)
			}
			if applied != tc.applied {
				t.Fatalf("Apply(%s, %s) applied=%t, expected %t", tc.from, tc.event, applied, tc.applied)
			}
		})
	}
}
