package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/foratask/foratask-billing/pkg/enums"
)

// AccessTokenClaims is the typed JWT the auth service issues. The billing
// engine only consumes it; session issuance lives elsewhere.
type AccessTokenClaims struct {
	UserID         uuid.UUID        `json:"user_id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Role           enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
