package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/foratask/foratask-billing/pkg/enums"
)

// TransitionResult reports what a lifecycle operation did. Skipped
// transitions come back with Applied=false instead of an error so no event
// is ever silently lost.
type TransitionResult struct {
	OrganizationID uuid.UUID                `json:"organization_id"`
	Applied        bool                     `json:"applied"`
	From           enums.SubscriptionStatus `json:"from"`
	To             enums.SubscriptionStatus `json:"to"`
	UserCount      int                      `json:"user_count"`
	TotalAmount    int64                    `json:"total_amount"`
}

// SweepResult summarizes one expiry sweep cycle.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
}

// StatusProjection is the read surface the dashboard consumes.
type StatusProjection struct {
	OrganizationID   uuid.UUID                `json:"organization_id"`
	Status           enums.SubscriptionStatus `json:"status"`
	CurrentUserCount int                      `json:"currentUserCount"`
	TotalAmount      int64                    `json:"totalAmount"`
	DaysUntilExpiry  int                      `json:"daysUntilExpiry"`
	TrialEndDate     time.Time                `json:"trialEndDate"`
	CurrentPeriodEnd time.Time                `json:"currentPeriodEnd"`
	Warning          enums.ExpiryWarning      `json:"warning"`
	Restricted       bool                     `json:"restricted"`
}

// PricePreview answers "what would N users cost" without touching any
// subscription.
type PricePreview struct {
	UserCount   int   `json:"userCount"`
	TotalAmount int64 `json:"totalAmount"`
}
