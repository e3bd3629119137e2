package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foratask/foratask-billing/pkg/enums"
)

// Membership links a user with an organization and captures their
// role/status. Only status=active rows count toward the billable user count.
type Membership struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID  uuid.UUID              `gorm:"column:organization_id;type:uuid;not null;index"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:membership_status;not null;default:'active'"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	RemovedAt       *time.Time             `gorm:"column:removed_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
