package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/internal/pricing"
	"github.com/foratask/foratask-billing/pkg/db"
	"github.com/foratask/foratask-billing/pkg/db/models"
	"github.com/foratask/foratask-billing/pkg/enums"
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
	"github.com/foratask/foratask-billing/pkg/logger"
)

const defaultCASRetries = 5

// UserCountProvider reports how many active (non-removed) members an
// organization has. The membership service owns the data; billing only
// snapshots it.
type UserCountProvider interface {
	ActiveMemberCount(ctx context.Context, orgID uuid.UUID) (int, error)
}

type repository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	FindByOrganization(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error)
	UpdateVersioned(ctx context.Context, sub *models.Subscription) (bool, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error)
}

// Service is the subscription lifecycle and query surface.
type Service interface {
	CreateSubscription(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error)
	OnMembershipChanged(ctx context.Context, orgID uuid.UUID) (TransitionResult, error)
	OnPaymentConfirmed(ctx context.Context, orgID uuid.UUID, periodDays int) (TransitionResult, error)
	CheckAndExpire(ctx context.Context, orgID uuid.UUID) (TransitionResult, error)
	ExpireDue(ctx context.Context, limit int) (SweepResult, error)
	Cancel(ctx context.Context, orgID uuid.UUID) (TransitionResult, error)
	Restrict(ctx context.Context, orgID uuid.UUID, reason string) error
	Unrestrict(ctx context.Context, orgID uuid.UUID) error
	GetStatus(ctx context.Context, orgID uuid.UUID) (StatusProjection, error)
	PreviewPrice(userCount int) (PricePreview, error)
}

// ServiceParams groups dependencies for the billing service.
type ServiceParams struct {
	Repo          repository
	Users         UserCountProvider
	Logger        *logger.Logger
	TrialLength   time.Duration
	DefaultPeriod time.Duration
	CASMaxRetries int
	Now           func() time.Time
}

type service struct {
	repo          repository
	users         UserCountProvider
	logg          *logger.Logger
	trialLength   time.Duration
	defaultPeriod time.Duration
	maxRetries    int
	now           func() time.Time
}

// NewService builds the billing service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user count provider is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.TrialLength <= 0 {
		return nil, fmt.Errorf("trial length must be positive")
	}
	if params.DefaultPeriod <= 0 {
		return nil, fmt.Errorf("default period must be positive")
	}
	retries := params.CASMaxRetries
	if retries <= 0 {
		retries = defaultCASRetries
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:          params.Repo,
		users:         params.Users,
		logg:          params.Logger,
		trialLength:   params.TrialLength,
		defaultPeriod: params.DefaultPeriod,
		maxRetries:    retries,
		now:           now,
	}, nil
}

// CreateSubscription starts the trial for a freshly registered organization.
func (s *service) CreateSubscription(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}

	count, err := s.activeCount(ctx, orgID)
	if err != nil {
		return nil, err
	}
	amount, err := pricing.Price(count)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &models.Subscription{
		OrganizationID:   orgID,
		Status:           enums.SubscriptionStatusTrial,
		TrialStart:       now,
		TrialEnd:         now.Add(s.trialLength),
		CurrentPeriodEnd: now.Add(s.trialLength),
		CurrentUserCount: count,
		TotalAmount:      amount,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "subscription already exists for organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	return sub, nil
}

// OnMembershipChanged re-snapshots the active member count and reprices the
// subscription. Safe to call on every add/remove; recomputation with the
// same count is a no-write no-op.
func (s *service) OnMembershipChanged(ctx context.Context, orgID uuid.UUID) (TransitionResult, error) {
	count, err := s.activeCount(ctx, orgID)
	if err != nil {
		return TransitionResult{}, err
	}
	amount, err := pricing.Price(count)
	if err != nil {
		return TransitionResult{}, err
	}

	return s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		dirty := sub.CurrentUserCount != count || sub.TotalAmount != amount
		sub.CurrentUserCount = count
		sub.TotalAmount = amount
		return s.result(sub, sub.Status, sub.Status, true), dirty, nil
	})
}

// OnPaymentConfirmed reacts to a successful payment: the subscription goes
// active and its period is pushed out by periodDays (the configured default
// when the caller passes 0). The amount is repriced at the count on record
// at payment time, never retroactively.
func (s *service) OnPaymentConfirmed(ctx context.Context, orgID uuid.UUID, periodDays int) (TransitionResult, error) {
	if periodDays < 0 {
		return TransitionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "period days must not be negative")
	}
	period := s.defaultPeriod
	if periodDays > 0 {
		period = time.Duration(periodDays) * 24 * time.Hour
	}

	return s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		from := sub.Status
		next, applied := Apply(from, EventPaymentConfirmed)
		if !applied {
			s.warnSkipped(ctx, sub, EventPaymentConfirmed)
			return s.result(sub, from, from, false), false, nil
		}
		amount, err := pricing.Price(sub.CurrentUserCount)
		if err != nil {
			return TransitionResult{}, false, err
		}
		sub.Status = next
		sub.CurrentPeriodEnd = s.now().Add(period)
		sub.TotalAmount = amount
		return s.result(sub, from, next, true), true, nil
	})
}

// CheckAndExpire applies the expiry transition when the period has passed.
// Idempotent: already-expired subscriptions report an unapplied result.
func (s *service) CheckAndExpire(ctx context.Context, orgID uuid.UUID) (TransitionResult, error) {
	return s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		res, dirty := s.expireIfDue(sub)
		return res, dirty, nil
	})
}

// ExpireDue sweeps every subscription whose period has passed. The lazy
// read-time check and this sweep converge on the same transition table.
// A failure on one organization does not stop the sweep; errors are
// aggregated and returned alongside the partial result.
func (s *service) ExpireDue(ctx context.Context, limit int) (SweepResult, error) {
	due, err := s.repo.ListDue(ctx, s.now(), limit)
	if err != nil {
		return SweepResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list due subscriptions")
	}

	res := SweepResult{Scanned: len(due)}
	var errs error
	for i := range due {
		tr, err := s.CheckAndExpire(ctx, due[i].OrganizationID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire organization %s: %w", due[i].OrganizationID, err))
			continue
		}
		if tr.Applied && tr.To == enums.SubscriptionStatusExpired {
			res.Expired++
		} else {
			res.Skipped++
		}
	}
	return res, errs
}

// Cancel marks the subscription cancelled. Terminal; cancelling twice is a
// reported no-op.
func (s *service) Cancel(ctx context.Context, orgID uuid.UUID) (TransitionResult, error) {
	return s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		from := sub.Status
		next, applied := Apply(from, EventCancel)
		if !applied {
			s.warnSkipped(ctx, sub, EventCancel)
			return s.result(sub, from, from, false), false, nil
		}
		now := s.now()
		sub.Status = next
		sub.CancelledAt = &now
		return s.result(sub, from, next, true), true, nil
	})
}

// Restrict manually blocks an organization regardless of subscription
// status.
func (s *service) Restrict(ctx context.Context, orgID uuid.UUID, reason string) error {
	_, err := s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		dirty := !sub.Restricted
		sub.Restricted = true
		sub.RestrictionReason = &reason
		return s.result(sub, sub.Status, sub.Status, dirty), dirty, nil
	})
	return err
}

// Unrestrict lifts a manual restriction.
func (s *service) Unrestrict(ctx context.Context, orgID uuid.UUID) error {
	_, err := s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		dirty := sub.Restricted
		sub.Restricted = false
		sub.RestrictionReason = nil
		return s.result(sub, sub.Status, sub.Status, dirty), dirty, nil
	})
	return err
}

// GetStatus returns the dashboard projection. The lazy expiry check runs
// inside the same compare-and-swap pass as the read, so the projection can
// never show an active status past its period end.
func (s *service) GetStatus(ctx context.Context, orgID uuid.UUID) (StatusProjection, error) {
	var projection StatusProjection
	_, err := s.mutate(ctx, orgID, func(sub *models.Subscription) (TransitionResult, bool, error) {
		res, dirty := s.expireIfDue(sub)
		projection = s.project(sub)
		return res, dirty, nil
	})
	if err != nil {
		return StatusProjection{}, err
	}
	return projection, nil
}

// PreviewPrice answers the pre-signup price display without touching any
// subscription.
func (s *service) PreviewPrice(userCount int) (PricePreview, error) {
	amount, err := pricing.Price(userCount)
	if err != nil {
		return PricePreview{}, err
	}
	return PricePreview{UserCount: userCount, TotalAmount: amount}, nil
}

func (s *service) expireIfDue(sub *models.Subscription) (TransitionResult, bool) {
	from := sub.Status
	if !HasExpired(sub.CurrentPeriodEnd, s.now()) {
		return s.result(sub, from, from, false), false
	}
	next, applied := Apply(from, EventExpiryDue)
	if !applied {
		return s.result(sub, from, from, false), false
	}
	sub.Status = next
	return s.result(sub, from, next, true), true
}

func (s *service) project(sub *models.Subscription) StatusProjection {
	days := RemainingDays(sub.CurrentPeriodEnd, s.now())
	return StatusProjection{
		OrganizationID:   sub.OrganizationID,
		Status:           sub.Status,
		CurrentUserCount: sub.CurrentUserCount,
		TotalAmount:      sub.TotalAmount,
		DaysUntilExpiry:  days,
		TrialEndDate:     sub.TrialEnd,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		Warning:          enums.ExpiryWarningForDays(days),
		Restricted:       sub.Restricted,
	}
}

// mutate runs one read-modify-write pass under optimistic concurrency.
// Writers on the same organization serialize through the version column;
// different organizations never contend.
func (s *service) mutate(ctx context.Context, orgID uuid.UUID, fn func(sub *models.Subscription) (TransitionResult, bool, error)) (TransitionResult, error) {
	if orgID == uuid.Nil {
		return TransitionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		sub, err := s.repo.FindByOrganization(ctx, orgID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return TransitionResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription for organization")
			}
			return TransitionResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}

		res, dirty, err := fn(sub)
		if err != nil {
			return TransitionResult{}, err
		}
		if !dirty {
			return res, nil
		}

		ok, err := s.repo.UpdateVersioned(ctx, sub)
		if err != nil {
			return TransitionResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
		}
		if ok {
			return res, nil
		}
	}
	return TransitionResult{}, pkgerrors.New(pkgerrors.CodeConflict, "subscription update contention, retries exhausted")
}

func (s *service) activeCount(ctx context.Context, orgID uuid.UUID) (int, error) {
	count, err := s.users.ActiveMemberCount(ctx, orgID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch active member count")
	}
	if count < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "member count provider reported no members").
			WithDetails(map[string]any{"organization_id": orgID, "count": count})
	}
	return count, nil
}

func (s *service) result(sub *models.Subscription, from, to enums.SubscriptionStatus, applied bool) TransitionResult {
	return TransitionResult{
		OrganizationID: sub.OrganizationID,
		Applied:        applied,
		From:           from,
		To:             to,
		UserCount:      sub.CurrentUserCount,
		TotalAmount:    sub.TotalAmount,
	}
}

func (s *service) warnSkipped(ctx context.Context, sub *models.Subscription, event Event) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"organization_id": sub.OrganizationID,
		"status":          sub.Status,
		"event":           string(event),
	})
	s.logg.Warn(logCtx, "subscription event skipped for current status")
}
