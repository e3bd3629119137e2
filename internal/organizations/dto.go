package organizations

import (
	"github.com/foratask/foratask-billing/pkg/db/models"
)

// RegisterRequest carries the payload for onboarding a new organization
// together with its owner account.
type RegisterRequest struct {
	OrganizationName string  `json:"organization_name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	OwnerFirstName   string  `json:"owner_first_name" validate:"required"`
	OwnerLastName    string  `json:"owner_last_name" validate:"required"`
	ContactNumber    *string `json:"contact_number,omitempty"`
	Address          *string `json:"address,omitempty"`
}

// RegisterResult returns the rows created by a successful registration.
type RegisterResult struct {
	Organization *models.Organization `json:"organization"`
	Owner        *models.User         `json:"owner"`
	Subscription *models.Subscription `json:"subscription"`
}
