package controllers

import (
	"net/http"

	"github.com/foratask/foratask-billing/api/responses"
	"github.com/foratask/foratask-billing/api/validators"
	"github.com/foratask/foratask-billing/internal/organizations"
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
	"github.com/foratask/foratask-billing/pkg/logger"
)

// OrganizationRegister onboards a new tenant: organization, owner account,
// owner admin membership and the 90-day trial subscription, atomically.
func OrganizationRegister(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body organizations.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "organization register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
