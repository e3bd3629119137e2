package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foratask/foratask-billing/pkg/enums"
)

// Subscription persists per-organization billing state. TotalAmount is a
// cache of the pricing ladder applied to CurrentUserCount and is recomputed
// on every membership change; it must never drift from the ladder. Version
// backs the optimistic compare-and-swap used to serialize writers per
// organization.
type Subscription struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID    uuid.UUID                `gorm:"column:organization_id;type:uuid;not null;uniqueIndex"`
	Status            enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'trial'"`
	TrialStart        time.Time                `gorm:"column:trial_start;not null"`
	TrialEnd          time.Time                `gorm:"column:trial_end;not null"`
	CurrentPeriodEnd  time.Time                `gorm:"column:current_period_end;not null"`
	CurrentUserCount  int                      `gorm:"column:current_user_count;not null;default:1"`
	TotalAmount       int64                    `gorm:"column:total_amount;not null"`
	Restricted        bool                     `gorm:"column:restricted;not null;default:false"`
	RestrictionReason *string                  `gorm:"column:restriction_reason"`
	CancelledAt       *time.Time               `gorm:"column:cancelled_at"`
	Version           int64                    `gorm:"column:version;not null;default:0"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
