package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/pkg/db/models"
)

// Repository handles subscription persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to subscription operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new subscription row. The unique index on
// organization_id enforces the one-subscription-per-organization guarantee.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindByOrganization loads the subscription owned by the given organization.
func (r *Repository) FindByOrganization(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateVersioned saves the subscription only when its version still matches
// the one it was read at, bumping the version on success. A false return
// means another writer got there first and the caller should re-read and
// retry.
func (r *Repository) UpdateVersioned(ctx context.Context, sub *models.Subscription) (bool, error) {
	if sub == nil {
		return false, fmt.Errorf("subscription is required")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, sub.Version).
		Updates(map[string]any{
			"status":             sub.Status,
			"current_period_end": sub.CurrentPeriodEnd,
			"current_user_count": sub.CurrentUserCount,
			"total_amount":       sub.TotalAmount,
			"restricted":         sub.Restricted,
			"restriction_reason": sub.RestrictionReason,
			"cancelled_at":       sub.CancelledAt,
			"version":            sub.Version + 1,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	sub.Version++
	return true, nil
}

// ListDue returns subscriptions still marked trial/active whose period has
// passed, oldest first. The sweep feeds each through the expiry transition.
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	q := r.db.WithContext(ctx).
		Where("status IN ?", []string{"trial", "active"}).
		Where("current_period_end < ?", now).
		Order("current_period_end ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
