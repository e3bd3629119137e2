package organizations

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/pkg/config"
	"github.com/foratask/foratask-billing/pkg/db/models"
	"github.com/foratask/foratask-billing/pkg/enums"
	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
	"github.com/foratask/foratask-billing/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func setupRegistrationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:organizations_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  designation TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS organizations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  contact_number TEXT,
  address TEXT,
  owner_user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  deactivated_at DATETIME
);
CREATE TABLE IF NOT EXISTS memberships (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  invited_by_user_id TEXT,
  removed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS subscriptions (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'trial',
  trial_start DATETIME NOT NULL,
  trial_end DATETIME NOT NULL,
  current_period_end DATETIME NOT NULL,
  current_user_count INTEGER NOT NULL DEFAULT 1,
  total_amount INTEGER NOT NULL,
  restricted INTEGER NOT NULL DEFAULT 0,
  restriction_reason TEXT,
  cancelled_at DATETIME,
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newRegistrationService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		DB:     gormTxRunner{db: conn},
		Repo:   NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Billing: config.BillingConfig{
			TrialDays:         90,
			DefaultPeriodDays: 30,
			CASMaxRetries:     5,
		},
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterCreatesTenantOwnerAndTrial(t *testing.T) {
	conn := setupRegistrationTestDB(t)
	svc := newRegistrationService(t, conn)

	result, err := svc.Register(context.Background(), RegisterRequest{
		OrganizationName: "Acme HR",
		Email:            "Owner@Acme.Test",
		OwnerFirstName:   "Ada",
		OwnerLastName:    "Osei",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "owner@acme.test", result.Owner.Email)
	assert.Equal(t, result.Owner.ID, result.Organization.OwnerUserID)

	var membership models.Membership
	require.NoError(t, conn.
		Where("organization_id = ? AND user_id = ?", result.Organization.ID, result.Owner.ID).
		First(&membership).Error)
	assert.Equal(t, enums.MemberRoleAdmin, membership.Role)
	assert.Equal(t, enums.MembershipStatusActive, membership.Status)

	sub := result.Subscription
	require.NotNil(t, sub)
	assert.Equal(t, enums.SubscriptionStatusTrial, sub.Status)
	assert.Equal(t, 1, sub.CurrentUserCount)
	assert.Equal(t, int64(249), sub.TotalAmount)

	wantEnd := time.Now().UTC().Add(90 * 24 * time.Hour)
	assert.WithinDuration(t, wantEnd, sub.TrialEnd, time.Minute)
	assert.Equal(t, sub.TrialEnd, sub.CurrentPeriodEnd)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	conn := setupRegistrationTestDB(t)
	svc := newRegistrationService(t, conn)

	req := RegisterRequest{
		OrganizationName: "Acme HR",
		Email:            "owner@acme.test",
		OwnerFirstName:   "Ada",
		OwnerLastName:    "Osei",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	req.OrganizationName = "Acme Again"
	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	var orgCount int64
	require.NoError(t, conn.Model(&models.Organization{}).Count(&orgCount).Error)
	assert.Equal(t, int64(1), orgCount)
}

func TestRegisterValidatesInput(t *testing.T) {
	conn := setupRegistrationTestDB(t)
	svc := newRegistrationService(t, conn)

	cases := []RegisterRequest{
		{OrganizationName: "Acme", OwnerFirstName: "Ada", OwnerLastName: "Osei"},
		{Email: "o@a.test", OwnerFirstName: "Ada", OwnerLastName: "Osei"},
		{OrganizationName: "Acme", Email: "o@a.test", OwnerLastName: "Osei"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err)

		var appErr *pkgerrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}

	var userCount int64
	require.NoError(t, conn.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(0), userCount)
}

func TestGetReturnsNotFoundForUnknownOrganization(t *testing.T) {
	conn := setupRegistrationTestDB(t)
	svc := newRegistrationService(t, conn)

	result, err := svc.Register(context.Background(), RegisterRequest{
		OrganizationName: "Acme HR",
		Email:            "owner@acme.test",
		OwnerFirstName:   "Ada",
		OwnerLastName:    "Osei",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), result.Organization.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Organization.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
