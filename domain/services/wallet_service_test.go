package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/testhelpers"
)

func newWalletFixture() (*testhelpers.FakeUnitOfWork, *walletService) {
	uow := testhelpers.NewFakeUnitOfWork()
	svc := NewWalletService(&testhelpers.FakeUowFactory{Uow: uow}).(*walletService)
	return uow, svc
}

func TestGetSummary_ReturnsWallet(t *testing.T) {
	uow, svc := newWalletFixture()
	uow.Wallets.On("GetByUserID", mock.Anything, int64(7)).Return(testWallet(3, 7, 42), nil)

	wallet, err := svc.GetSummary(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(3), wallet.ID)
	assert.True(t, uow.Committed)
}

func TestGetSummary_NotFound(t *testing.T) {
	uow, svc := newWalletFixture()
	uow.Wallets.On("GetByUserID", mock.Anything, int64(7)).Return(nil, nil)

	_, err := svc.GetSummary(context.Background(), 7)

	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSetWithdrawalAddress_SetsOnce(t *testing.T) {
	uow, svc := newWalletFixture()
	uow.Wallets.On("GetByUserIDForUpdate", mock.Anything, int64(7)).Return(testWallet(3, 7, 0), nil)
	uow.Wallets.On("SetWithdrawalAddress", mock.Anything, int64(7), testAddress).Return(nil)

	err := svc.SetWithdrawalAddress(context.Background(), 7, testAddress)

	require.NoError(t, err)
	assert.True(t, uow.Committed)
}

func TestSetWithdrawalAddress_AlreadySet(t *testing.T) {
	uow, svc := newWalletFixture()
	wallet := testWallet(3, 7, 0)
	existing := testAddress
	wallet.WithdrawalAddress = &existing
	uow.Wallets.On("GetByUserIDForUpdate", mock.Anything, int64(7)).Return(wallet, nil)

	err := svc.SetWithdrawalAddress(context.Background(), 7, "TAnotherValidAddress1234567890ab")

	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "address_already_set", typed.Code)
	uow.Wallets.AssertNotCalled(t, "SetWithdrawalAddress", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetWithdrawalAddress_RejectsMalformed(t *testing.T) {
	uow, svc := newWalletFixture()

	err := svc.SetWithdrawalAddress(context.Background(), 7, "nope")

	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.False(t, uow.Began)
}

func TestListTransactions_ClampsLimit(t *testing.T) {
	for _, requested := range []int{0, -3, 500} {
		uow, svc := newWalletFixture()
		uow.Transactions.On("ListByUser", mock.Anything, int64(7), defaultTransactionPageSize).
			Return([]*entities.Transaction{}, nil)

		_, err := svc.ListTransactions(context.Background(), 7, requested)

		require.NoError(t, err)
		uow.Transactions.AssertExpectations(t)
	}

	uow, svc := newWalletFixture()
	uow.Transactions.On("ListByUser", mock.Anything, int64(7), 25).
		Return([]*entities.Transaction{{ID: 1}}, nil)

	txs, err := svc.ListTransactions(context.Background(), 7, 25)

	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
