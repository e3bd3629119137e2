package billing

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/foratask/foratask-billing/api/middleware"
	"github.com/foratask/foratask-billing/api/responses"
	"github.com/foratask/foratask-billing/api/validators"
	billingsvc "github.com/foratask/foratask-billing/internal/billing"
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
	"github.com/foratask/foratask-billing/pkg/logger"
)

// SubscriptionService describes the billing methods used by the HTTP
// controllers.
type SubscriptionService interface {
	GetStatus(ctx context.Context, orgID uuid.UUID) (billingsvc.StatusProjection, error)
	PreviewPrice(userCount int) (billingsvc.PricePreview, error)
	OnMembershipChanged(ctx context.Context, orgID uuid.UUID) (billingsvc.TransitionResult, error)
	OnPaymentConfirmed(ctx context.Context, orgID uuid.UUID, periodDays int) (billingsvc.TransitionResult, error)
	Cancel(ctx context.Context, orgID uuid.UUID) (billingsvc.TransitionResult, error)
	Restrict(ctx context.Context, orgID uuid.UUID, reason string) error
	Unrestrict(ctx context.Context, orgID uuid.UUID) error
}

// SubscriptionStatus serves the dashboard's billing panel. The organization
// comes from the bearer token, never from the request.
func SubscriptionStatus(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orgID, err := uuid.Parse(middleware.OrganizationIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing"))
			return
		}

		status, err := svc.GetStatus(ctx, orgID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// CalculatePrice previews what a given seat count would cost.
func CalculatePrice(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userCount, err := validators.RequireQueryInt(r, "userCount")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		preview, err := svc.PreviewPrice(userCount)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

type organizationEventRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
}

type paymentConfirmedRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	PeriodDays     int       `json:"period_days,omitempty"`
}

type restrictRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Reason         string    `json:"reason" validate:"required"`
}

// MembershipChanged is the internal hook the membership service calls after
// any member add or remove. Repricing is idempotent so double delivery is
// harmless.
func MembershipChanged(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req organizationEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.OnMembershipChanged(ctx, req.OrganizationID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PaymentConfirmed is the internal hook invoked once a payment settles.
// period_days falls back to the configured default when omitted.
func PaymentConfirmed(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req paymentConfirmedRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.OnPaymentConfirmed(ctx, req.OrganizationID, req.PeriodDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CancelSubscription is the internal hook for a requested cancellation.
func CancelSubscription(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req organizationEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Cancel(ctx, req.OrganizationID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// RestrictOrganization manually blocks an organization, independent of its
// subscription status.
func RestrictOrganization(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req restrictRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Restrict(ctx, req.OrganizationID, req.Reason); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "restricted"})
	}
}

// UnrestrictOrganization lifts a manual restriction.
func UnrestrictOrganization(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req organizationEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Unrestrict(ctx, req.OrganizationID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unrestricted"})
	}
}
