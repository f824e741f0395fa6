package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/testhelpers"
)

func testTiers() []entities.ReferralTier {
	return []entities.ReferralTier{
		{ReferralThreshold: 10, MaxTickets: 25},
		{ReferralThreshold: 25, MaxTickets: 50},
		{ReferralThreshold: 50, MaxTickets: 75},
	}
}

func testEntryConfig() EntryConfig {
	return EntryConfig{
		BaseTicketCap: 10,
		ReferralTiers: testTiers(),
	}
}

func openDraw(id int64, opts ...func(*entities.Draw)) *entities.Draw {
	draw := &entities.Draw{
		ID:         id,
		Title:      "Weekly Draw",
		Status:     entities.DrawStatusActive,
		EntryPrice: decimal.NewFromInt(2),
		DrawTime:   time.Now().Add(time.Hour),
	}
	for _, opt := range opts {
		opt(draw)
	}
	return draw
}

func newEntryFixture(cfg EntryConfig) (*testhelpers.FakeUnitOfWork, interfaces.EntryService) {
	uow := testhelpers.NewFakeUnitOfWork()
	svc := NewEntryService(cfg, &testhelpers.FakeUowFactory{Uow: uow})
	return uow, svc
}

func TestPurchaseEntries_Succeeds(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())

	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(openDraw(5), nil)
	uow.Users.On("CountReferrals", mock.Anything, int64(7)).Return(0, nil)
	uow.Entries.On("CountByUserAndDraw", mock.Anything, int64(7), int64(5)).Return(2, nil)
	uow.Wallets.On("GetByUserIDForUpdate", mock.Anything, int64(7)).Return(testWallet(3, 7, 100), nil)
	uow.Wallets.On("Debit", mock.Anything, int64(3), decimal.NewFromInt(6)).Return(nil)
	uow.Transactions.On("Create", mock.Anything, mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.Type == entities.TransactionTypeEntryPurchase &&
			tx.Status == entities.TransactionStatusCompleted &&
			tx.Amount.Equal(decimal.NewFromInt(6))
	})).Return(nil)
	uow.Entries.On("CreateBatch", mock.Anything, mock.MatchedBy(func(entries []*entities.Entry) bool {
		if len(entries) != 3 {
			return false
		}
		seen := map[string]bool{}
		for _, e := range entries {
			if e.DrawID != 5 || e.UserID != 7 || len(e.TicketNumber) != ticketNumberLength {
				return false
			}
			seen[e.TicketNumber] = true
		}
		return len(seen) == 3
	})).Return(nil)
	uow.Draws.On("IncrementEntries", mock.Anything, int64(5), 3).Return(nil)

	result, err := svc.PurchaseEntries(context.Background(), 7, 5, 3)

	require.NoError(t, err)
	assert.Len(t, result.Entries, 3)
	assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(6)))
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(94)))
	assert.True(t, uow.Committed)

	// The debit is visible to observers as a balance change event.
	require.Len(t, uow.Publisher.Events, 1)
}

func TestPurchaseEntries_DrawNotFound(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())
	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(nil, nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 1)

	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestPurchaseEntries_DrawAlreadySettling(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())
	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).
		Return(openDraw(5, func(d *entities.Draw) { d.Status = entities.DrawStatusDrawing }), nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 1)

	assert.True(t, apperrors.IsKind(err, apperrors.KindState))
	assert.False(t, uow.Committed)
}

func TestPurchaseEntries_WindowClosed(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())
	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).
		Return(openDraw(5, func(d *entities.Draw) { d.DrawTime = time.Now().Add(-time.Minute) }), nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 1)

	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "entry_window_closed", typed.Code)
}

func TestPurchaseEntries_SoldOut(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())
	max := 100
	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).
		Return(openDraw(5, func(d *entities.Draw) {
			d.MaxEntries = &max
			d.CurrentEntries = 99
		}), nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 2)

	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "draw_sold_out", typed.Code)
}

func TestPurchaseEntries_BaseCapRejectsEleventhTicket(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())

	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(openDraw(5), nil)
	uow.Users.On("CountReferrals", mock.Anything, int64(7)).Return(0, nil)
	uow.Entries.On("CountByUserAndDraw", mock.Anything, int64(7), int64(5)).Return(0, nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 11)

	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.KindValidation, typed.Kind)
	assert.Equal(t, "ticket_cap_exceeded", typed.Code)
	assert.Equal(t, 10, typed.Details["maxTickets"])
	assert.Equal(t, 0, typed.Details["userReferrals"])
	next := typed.Details["nextTier"].(map[string]any)
	assert.Equal(t, 10, next["referralsNeeded"])
	assert.Equal(t, 25, next["maxTickets"])

	uow.Wallets.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseEntries_TierRaisesCap(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())

	// 30 referrals resolve to the 25-referral tier's cap of 50.
	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(openDraw(5), nil)
	uow.Users.On("CountReferrals", mock.Anything, int64(7)).Return(30, nil)
	uow.Entries.On("CountByUserAndDraw", mock.Anything, int64(7), int64(5)).Return(39, nil)
	uow.Wallets.On("GetByUserIDForUpdate", mock.Anything, int64(7)).Return(testWallet(3, 7, 1000), nil)
	uow.Wallets.On("Debit", mock.Anything, int64(3), mock.Anything).Return(nil)
	uow.Transactions.On("Create", mock.Anything, mock.Anything).Return(nil)
	uow.Entries.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	uow.Draws.On("IncrementEntries", mock.Anything, int64(5), 11).Return(nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 11)
	require.NoError(t, err)

	// One more would exceed the tier cap of 50.
	uow2, svc2 := newEntryFixture(testEntryConfig())
	uow2.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(openDraw(5), nil)
	uow2.Users.On("CountReferrals", mock.Anything, int64(7)).Return(30, nil)
	uow2.Entries.On("CountByUserAndDraw", mock.Anything, int64(7), int64(5)).Return(50, nil)

	_, err = svc2.PurchaseEntries(context.Background(), 7, 5, 1)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, 50, typed.Details["maxTickets"])
}

func TestPurchaseEntries_InsufficientBalance(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())

	uow.Draws.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(openDraw(5), nil)
	uow.Users.On("CountReferrals", mock.Anything, int64(7)).Return(0, nil)
	uow.Entries.On("CountByUserAndDraw", mock.Anything, int64(7), int64(5)).Return(0, nil)
	uow.Wallets.On("GetByUserIDForUpdate", mock.Anything, int64(7)).Return(testWallet(3, 7, 5), nil)

	_, err := svc.PurchaseEntries(context.Background(), 7, 5, 3)

	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientFunds))
	uow.Wallets.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketLimits(t *testing.T) {
	uow, svc := newEntryFixture(testEntryConfig())
	uow.Users.On("CountReferrals", mock.Anything, int64(7)).Return(12, nil)

	info, err := svc.TicketLimits(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 12, info.ReferralCount)
	assert.Equal(t, 25, info.MaxTickets)
	assert.Equal(t, 10, info.BaseCap)
	require.NotNil(t, info.NextTier)
	assert.Equal(t, 25, info.NextTier.ReferralThreshold)
}
