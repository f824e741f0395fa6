package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/entities"
	"prizedraw/repository/testutil"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewUserRepository(testDB.DB)

	t.Run("not found", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("round trip", func(t *testing.T) {
		user := testutil.CreateTestUser("alice")
		require.NoError(t, repo.Create(ctx, user))
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "alice", fetched.Username)
		assert.Equal(t, entities.RoleUser, fetched.Role)
		assert.Equal(t, user.ReferralCode, fetched.ReferralCode)
		assert.Nil(t, fetched.ReferredBy)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		dup := testutil.CreateTestUser("alice")
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestUserRepository_GetByReferralCode(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewUserRepository(testDB.DB)

	user := testutil.CreateTestUser("bob")
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.GetByReferralCode(ctx, user.ReferralCode)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	none, err := repo.GetByReferralCode(ctx, "UNKNOWN1")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepository_CountReferrals(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewUserRepository(testDB.DB)

	referrer := testutil.CreateTestUser("referrer")
	require.NoError(t, repo.Create(ctx, referrer))

	count, err := repo.CountReferrals(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for _, name := range []string{"friend1", "friend2", "friend3"} {
		referred := testutil.CreateTestUserReferredBy(name, referrer.ID)
		require.NoError(t, repo.Create(ctx, referred))
	}
	unrelated := testutil.CreateTestUser("loner")
	require.NoError(t, repo.Create(ctx, unrelated))

	count, err = repo.CountReferrals(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
