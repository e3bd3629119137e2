package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/internal/billing"
	"github.com/foratask/foratask-billing/internal/memberships"
	"github.com/foratask/foratask-billing/pkg/config"
	"github.com/foratask/foratask-billing/pkg/db"
	"github.com/foratask/foratask-billing/pkg/db/models"
	"github.com/foratask/foratask-billing/pkg/enums"
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
	"github.com/foratask/foratask-billing/pkg/logger"
)

// txRunner abstracts the transactional boundary so the registration flow can
// run against any GORM-backed connection.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service handles organization onboarding and lookup.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

// ServiceParams groups dependencies for the organization service.
type ServiceParams struct {
	DB      txRunner
	Repo    *Repository
	Logger  *logger.Logger
	Billing config.BillingConfig
}

type service struct {
	db      txRunner
	repo    *Repository
	logg    *logger.Logger
	billing config.BillingConfig
}

// NewService builds the organization service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:      params.DB,
		repo:    params.Repo,
		logg:    params.Logger,
		billing: params.Billing,
	}, nil
}

// Register creates the organization, its owner account, the owner's admin
// membership and the trial subscription in a single transaction. A failure
// at any step rolls everything back so a tenant never exists without a
// subscription.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.OrganizationName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	if strings.TrimSpace(req.OwnerFirstName) == "" || strings.TrimSpace(req.OwnerLastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner name is required")
	}

	var result RegisterResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orgRepo := NewRepository(tx)
		memberRepo := memberships.NewRepository(tx)

		if _, err := orgRepo.FindUserByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check owner email")
		}

		owner, err := orgRepo.CreateUser(ctx, CreateUserDTO{
			Email:     email,
			FirstName: strings.TrimSpace(req.OwnerFirstName),
			LastName:  strings.TrimSpace(req.OwnerLastName),
			Phone:     req.ContactNumber,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner")
		}

		org, err := orgRepo.CreateOrganization(ctx, CreateOrganizationDTO{
			Name:          strings.TrimSpace(req.OrganizationName),
			Email:         email,
			ContactNumber: req.ContactNumber,
			Address:       req.Address,
			OwnerUserID:   owner.ID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "organization email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create organization")
		}

		if _, err := memberRepo.CreateMembershipWithTx(tx, org.ID, owner.ID, enums.MemberRoleAdmin); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
		}

		billingSvc, err := billing.NewService(billing.ServiceParams{
			Repo:          billing.NewRepository(tx),
			Users:         memberRepo,
			Logger:        s.logg,
			TrialLength:   s.billing.TrialLength(),
			DefaultPeriod: s.billing.DefaultPeriodLength(),
			CASMaxRetries: s.billing.CASMaxRetries,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build billing service")
		}
		sub, err := billingSvc.CreateSubscription(ctx, org.ID)
		if err != nil {
			return err
		}

		result = RegisterResult{
			Organization: org,
			Owner:        owner,
			Subscription: sub,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrganizationID(ctx, result.Organization.ID.String()), "organization registered")
	return &result, nil
}

// Get loads a single organization.
func (s *service) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return org, nil
}
