package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/pkg/db/models"
	"github.com/foratask/foratask-billing/pkg/enums"
)

// Repository exposes membership persistence operations. It is the concrete
// user-count provider the billing engine snapshots from.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveMemberCount counts memberships still billable for the organization.
// Removed members stop counting the moment their row flips.
func (r *Repository) ActiveMemberCount(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("organization_id = ? AND status = ?", orgID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.Membership{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		UserID:          userID,
		Role:            role,
		Status:          enums.MembershipStatusActive,
		InvitedByUserID: invitedBy,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// CreateMembershipWithTx persists a membership inside the caller's
// transaction, used by organization registration.
func (r *Repository) CreateMembershipWithTx(tx *gorm.DB, orgID, userID uuid.UUID, role enums.MemberRole) (*models.Membership, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.Membership{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		Status:         enums.MembershipStatusActive,
	}
	if err := tx.Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// RemoveMembership marks the member removed so it no longer counts toward
// billing. The row stays for history.
func (r *Repository) RemoveMembership(ctx context.Context, orgID, userID uuid.UUID) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("organization_id = ? AND user_id = ? AND status = ?", orgID, userID, enums.MembershipStatusActive).
		Updates(map[string]any{
			"status":     enums.MembershipStatusRemoved,
			"removed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetMembership retrieves a membership by user and organization.
func (r *Repository) GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
