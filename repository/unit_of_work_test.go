package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/events"
	"prizedraw/repository/testutil"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var mu sync.Mutex
	var received []events.Event
	bus.Subscribe(events.EventTypeBalanceChange, func(_ context.Context, e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user := testutil.CreateTestUser("alice")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	wallet := testutil.CreateTestWallet(user.ID)
	require.NoError(t, uow.WalletRepository().Create(ctx, wallet))
	require.NoError(t, uow.WalletRepository().Credit(ctx, wallet.ID, decimal.NewFromInt(25)))
	require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     user.ID,
		OldBalance: "0",
		NewBalance: "25",
	}))
	require.NoError(t, uow.Commit())

	fetched, err := NewWalletRepository(testDB.DB).GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.True(t, fetched.Balance.Equal(decimal.NewFromInt(25)))

	// Handlers run asynchronously after the flush
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var mu sync.Mutex
	delivered := 0
	bus.Subscribe(events.EventTypeBalanceChange, func(_ context.Context, _ events.Event) {
		mu.Lock()
		defer mu.Unlock()
		delivered++
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user := testutil.CreateTestUser("ghost")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: user.ID}))
	require.NoError(t, uow.Rollback())

	fetched, err := NewUserRepository(testDB.DB).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, delivered)
	mu.Unlock()
}

func TestUnitOfWork_RollbackAfterCommitIsSafe(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	user := testutil.CreateTestUser("bob")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	require.NoError(t, uow.Commit())

	// The deferred rollback every service runs after Commit must be a no-op
	require.NoError(t, uow.Rollback())

	fetched, err := NewUserRepository(testDB.DB).GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
}

func TestUnitOfWork_RepositoryAccessBeforeBeginPanics(t *testing.T) {
	t.Parallel()
	factory := NewUnitOfWorkFactory(nil, events.NewBus())
	uow := factory.Create()

	assert.Panics(t, func() { uow.UserRepository() })
	assert.Panics(t, func() { uow.WalletRepository() })
}
