package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foratask/foratask-billing/api/controllers"
	billingcontrollers "github.com/foratask/foratask-billing/api/controllers/billing"
	"github.com/foratask/foratask-billing/api/middleware"
	"github.com/foratask/foratask-billing/api/responses"
	"github.com/foratask/foratask-billing/internal/billing"
	"github.com/foratask/foratask-billing/internal/organizations"
	"github.com/foratask/foratask-billing/pkg/config"
	"github.com/foratask/foratask-billing/pkg/logger"
	"github.com/foratask/foratask-billing/pkg/redis"
)

// Pinger matches the health checks the readiness probe runs.
type Pinger = controllers.Pinger

// NewRouter assembles the billing API surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP Pinger,
	redisClient *redis.Client,
	billingService billing.Service,
	organizationService organizations.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var cacheP Pinger
	if redisClient != nil {
		cacheP = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/organizations/register", controllers.OrganizationRegister(organizationService, logg))

		r.Route("/billing", func(r chi.Router) {
			// price preview backs the public signup and upsell pages,
			// so it stays outside the auth gate
			r.Get("/calculate-price", billingcontrollers.CalculatePrice(billingService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/subscription-status", billingcontrollers.SubscriptionStatus(billingService, logg))
			})
		})

		// product routes sit behind the entitlement gate; the billing
		// service itself only hosts a probe the dashboard can hit to
		// verify access
		r.Route("/app", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.Entitlement(billingService, logg),
			)
			r.Get("/access", func(w http.ResponseWriter, req *http.Request) {
				responses.WriteSuccess(w, map[string]string{"status": "entitled"})
			})
		})
	})

	// service-to-service hooks, reachable only on the private network
	r.Route("/internal/billing", func(r chi.Router) {
		r.Post("/membership-changed", billingcontrollers.MembershipChanged(billingService, logg))
		r.Post("/payment-confirmed", billingcontrollers.PaymentConfirmed(billingService, logg))
		r.Post("/cancel", billingcontrollers.CancelSubscription(billingService, logg))
		r.Post("/restrict", billingcontrollers.RestrictOrganization(billingService, logg))
		r.Post("/unrestrict", billingcontrollers.UnrestrictOrganization(billingService, logg))
	})

	return r
}
