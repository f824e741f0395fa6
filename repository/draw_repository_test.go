package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/entities"
	"prizedraw/repository/testutil"
)

func TestDrawRepository_CreateWithPrizes(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewDrawRepository(testDB.DB)

	draw, prizes := testutil.CreateTestDrawWithPrizes("Friday Draw", 100, 40, 10)
	require.NoError(t, repo.Create(ctx, draw, prizes))
	assert.NotZero(t, draw.ID)
	assert.Equal(t, 0, draw.CurrentEntries)

	fetched, err := repo.GetByID(ctx, draw.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Friday Draw", fetched.Title)
	assert.Equal(t, entities.DrawStatusActive, fetched.Status)
	assert.True(t, fetched.EntryPrice.Equal(decimal.NewFromInt(2)))
	assert.Nil(t, fetched.MaxEntries)

	stored, err := repo.GetPrizes(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, prize := range stored {
		assert.Equal(t, i+1, prize.Position)
		assert.Equal(t, draw.ID, prize.DrawID)
	}
	assert.True(t, stored[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, stored[2].Amount.Equal(decimal.NewFromInt(10)))
}

func TestDrawRepository_DuplicatePrizePositionRejected(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewDrawRepository(testDB.DB)

	draw, _ := testutil.CreateTestDrawWithPrizes("Broken Draw")
	prizes := []*entities.Prize{
		{Position: 1, Amount: decimal.NewFromInt(100)},
		{Position: 1, Amount: decimal.NewFromInt(50)},
	}
	assert.Error(t, repo.Create(ctx, draw, prizes))
}

func TestDrawRepository_UpdateStatusAndIncrement(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewDrawRepository(testDB.DB)

	draw := testutil.CreateTestDraw("Counter Draw")
	require.NoError(t, repo.Create(ctx, draw, nil))

	require.NoError(t, repo.IncrementEntries(ctx, draw.ID, 3))
	require.NoError(t, repo.IncrementEntries(ctx, draw.ID, 2))
	require.NoError(t, repo.UpdateStatus(ctx, draw.ID, entities.DrawStatusDrawing))

	fetched, err := repo.GetByID(ctx, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fetched.CurrentEntries)
	assert.Equal(t, entities.DrawStatusDrawing, fetched.Status)

	assert.Error(t, repo.UpdateStatus(ctx, 999999, entities.DrawStatusCompleted))
	assert.Error(t, repo.IncrementEntries(ctx, 999999, 1))
}

func TestEntryRepository_CreateBatchAndCount(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	draws := NewDrawRepository(testDB.DB)
	entries := NewEntryRepository(testDB.DB)

	user := createUserWithWallet(t, testDB, "alice")
	other := createUserWithWallet(t, testDB, "bob")

	draw := testutil.CreateTestDraw("Entry Draw")
	require.NoError(t, draws.Create(ctx, draw, nil))

	batch := []*entities.Entry{
		testutil.CreateTestEntry(draw.ID, user.ID, "TICKET0001"),
		testutil.CreateTestEntry(draw.ID, user.ID, "TICKET0002"),
		testutil.CreateTestEntry(draw.ID, other.ID, "TICKET0003"),
	}
	require.NoError(t, entries.CreateBatch(ctx, batch))
	for _, e := range batch {
		assert.NotZero(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}

	count, err := entries.CountByUserAndDraw(ctx, user.ID, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	listed, err := entries.ListByDraw(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "TICKET0001", listed[0].TicketNumber)

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, entries.CreateBatch(ctx, nil))
	})

	t.Run("duplicate ticket number rejected", func(t *testing.T) {
		dup := []*entities.Entry{testutil.CreateTestEntry(draw.ID, user.ID, "TICKET0001")}
		assert.Error(t, entries.CreateBatch(ctx, dup))
	})
}

func TestWinnerRepository_CreateAndList(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	draws := NewDrawRepository(testDB.DB)
	winners := NewWinnerRepository(testDB.DB)

	first := createUserWithWallet(t, testDB, "first")
	second := createUserWithWallet(t, testDB, "second")

	draw := testutil.CreateTestDraw("Winner Draw")
	require.NoError(t, draws.Create(ctx, draw, nil))

	amount := decimal.NewFromInt(100)
	require.NoError(t, winners.Create(ctx, &entities.Winner{
		DrawID: draw.ID, UserID: second.ID, Position: 2, TicketNumber: "TICKET0002",
	}))
	require.NoError(t, winners.Create(ctx, &entities.Winner{
		DrawID: draw.ID, UserID: first.ID, Position: 1, PrizeAmount: &amount, TicketNumber: "TICKET0001",
	}))

	listed, err := winners.ListByDraw(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 1, listed[0].Position)
	require.NotNil(t, listed[0].PrizeAmount)
	assert.True(t, listed[0].PrizeAmount.Equal(amount))
	assert.Nil(t, listed[1].PrizeAmount)

	t.Run("one position per draw", func(t *testing.T) {
		err := winners.Create(ctx, &entities.Winner{
			DrawID: draw.ID, UserID: second.ID, Position: 1, TicketNumber: "TICKET0003",
		})
		assert.Error(t, err)
	})

	t.Run("one win per user per draw", func(t *testing.T) {
		err := winners.Create(ctx, &entities.Winner{
			DrawID: draw.ID, UserID: first.ID, Position: 3, TicketNumber: "TICKET0004",
		})
		assert.Error(t, err)
	})
}
