package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/pkg/db/models"
	"github.com/foratask/foratask-billing/pkg/enums"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:billing_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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

func seedSubscription(t *testing.T, conn *gorm.DB, status enums.SubscriptionStatus, periodEnd time.Time) *models.Subscription {
	t.Helper()

	now := time.Now().UTC()
	sub := &models.Subscription{
		ID:               uuid.New(),
		OrganizationID:   uuid.New(),
		Status:           status,
		TrialStart:       now,
		TrialEnd:         periodEnd,
		CurrentPeriodEnd: periodEnd,
		CurrentUserCount: 1,
		TotalAmount:      249,
	}
	require.NoError(t, conn.Create(sub).Error)
	return sub
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := setupBillingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	end := time.Now().UTC().Add(90 * 24 * time.Hour)
	sub := &models.Subscription{
		ID:               uuid.New(),
		OrganizationID:   uuid.New(),
		Status:           enums.SubscriptionStatusTrial,
		TrialStart:       time.Now().UTC(),
		TrialEnd:         end,
		CurrentPeriodEnd: end,
		CurrentUserCount: 1,
		TotalAmount:      249,
	}
	require.NoError(t, repo.Create(ctx, sub))

	found, err := repo.FindByOrganization(ctx, sub.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)
	assert.Equal(t, enums.SubscriptionStatusTrial, found.Status)
	assert.Equal(t, int64(249), found.TotalAmount)
}

func TestRepositoryUniqueOrganization(t *testing.T) {
	conn := setupBillingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first := seedSubscription(t, conn, enums.SubscriptionStatusTrial, time.Now().UTC().Add(time.Hour))

	dup := &models.Subscription{
		ID:               uuid.New(),
		OrganizationID:   first.OrganizationID,
		Status:           enums.SubscriptionStatusTrial,
		TrialStart:       time.Now().UTC(),
		TrialEnd:         time.Now().UTC().Add(time.Hour),
		CurrentPeriodEnd: time.Now().UTC().Add(time.Hour),
		CurrentUserCount: 1,
		TotalAmount:      249,
	}
	require.Error(t, repo.Create(ctx, dup))
}

func TestRepositoryFindMissingReturnsRecordNotFound(t *testing.T) {
	conn := setupBillingTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindByOrganization(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateVersioned(t *testing.T) {
	conn := setupBillingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	sub := seedSubscription(t, conn, enums.SubscriptionStatusTrial, time.Now().UTC().Add(time.Hour))

	loaded, err := repo.FindByOrganization(ctx, sub.OrganizationID)
	require.NoError(t, err)

	loaded.CurrentUserCount = 6
	loaded.TotalAmount = 299
	ok, err := repo.UpdateVersioned(ctx, loaded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), loaded.Version)

	// A writer holding the old version loses.
	stale := *loaded
	stale.Version = 0
	stale.TotalAmount = 999
	ok, err = repo.UpdateVersioned(ctx, &stale)
	require.NoError(t, err)
	assert.False(t, ok)

	fresh, err := repo.FindByOrganization(ctx, sub.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, int64(299), fresh.TotalAmount)
	assert.Equal(t, 6, fresh.CurrentUserCount)
	assert.Equal(t, int64(1), fresh.Version)
}

func TestRepositoryListDue(t *testing.T) {
	conn := setupBillingTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	now := time.Now().UTC()
	due := seedSubscription(t, conn, enums.SubscriptionStatusTrial, now.Add(-time.Hour))
	seedSubscription(t, conn, enums.SubscriptionStatusActive, now.Add(time.Hour))
	cancelled := seedSubscription(t, conn, enums.SubscriptionStatusCancelled, now.Add(-time.Hour))

	found, err := repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)
	assert.NotEqual(t, cancelled.ID, found[0].ID)
}
