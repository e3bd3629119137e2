package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the billing tenant. Every organization carries exactly one
// Subscription, created at registration.
type Organization struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string     `gorm:"column:name;not null"`
	Email         string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	ContactNumber *string    `gorm:"column:contact_number"`
	Address       *string    `gorm:"column:address"`
	OwnerUserID   uuid.UUID  `gorm:"column:owner_user_id;type:uuid;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeactivatedAt *time.Time `gorm:"column:deactivated_at"`
}
