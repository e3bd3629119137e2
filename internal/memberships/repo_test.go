package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foratask/foratask-billing/pkg/enums"
)

func setupMembershipsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:memberships_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func TestActiveMemberCountIgnoresRemoved(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	orgID := uuid.New()

	owner := uuid.New()
	_, err := repo.CreateMembership(ctx, orgID, owner, enums.MemberRoleAdmin, nil)
	require.NoError(t, err)

	teammate := uuid.New()
	_, err = repo.CreateMembership(ctx, orgID, teammate, enums.MemberRoleEmployee, &owner)
	require.NoError(t, err)

	count, err := repo.ActiveMemberCount(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.RemoveMembership(ctx, orgID, teammate))

	count, err = repo.ActiveMemberCount(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestActiveMemberCountScopedToOrganization(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgA := uuid.New()
	orgB := uuid.New()
	_, err := repo.CreateMembership(ctx, orgA, uuid.New(), enums.MemberRoleAdmin, nil)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, orgB, uuid.New(), enums.MemberRoleAdmin, nil)
	require.NoError(t, err)

	count, err := repo.ActiveMemberCount(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateMembershipRejectsUnknownRole(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.CreateMembership(context.Background(), uuid.New(), uuid.New(), enums.MemberRole("owner"), nil)
	require.Error(t, err)
}

func TestRemoveMembershipMissingRow(t *testing.T) {
	conn := setupMembershipsTestDB(t)
	repo := NewRepository(conn)

	err := repo.RemoveMembership(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
