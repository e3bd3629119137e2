package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/foratask/foratask-billing/api/responses"
	"github.com/foratask/foratask-billing/internal/billing"
	"github.com/foratask/foratask-billing/pkg/enums"
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
	"github.com/foratask/foratask-billing/pkg/logger"
)

// statusReader is the slice of the billing service the entitlement gate
// needs. Reading the status also runs the lazy expiry check, so a gate hit
// is enough to flip an overdue subscription.
type statusReader interface {
	GetStatus(ctx context.Context, orgID uuid.UUID) (billing.StatusProjection, error)
}

// Entitlement enforces subscription state on product routes. A restricted
// organization is blocked outright. Once the subscription expires or is
// cancelled, admins keep read-only access so they can reach the billing
// page and pay; everyone else is locked out.
func Entitlement(svc statusReader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, err := uuid.Parse(OrganizationIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing"))
				return
			}

			status, err := svc.GetStatus(r.Context(), orgID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			if status.Restricted {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "organization access is restricted"))
				return
			}

			switch status.Status {
			case enums.SubscriptionStatusTrial, enums.SubscriptionStatusActive:
				next.ServeHTTP(w, r)
			case enums.SubscriptionStatusExpired, enums.SubscriptionStatusCancelled:
				role := enums.MemberRole(RoleFromContext(r.Context()))
				if role == enums.MemberRoleAdmin && isReadOnly(r.Method) {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, "subscription has expired").
						WithDetails(map[string]any{"status": status.Status}))
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "subscription state unknown"))
			}
		})
	}
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
