package services

import (
	"context"
	"fmt"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
)

const defaultTransactionPageSize = 50

// walletService exposes the wallet read surface and withdrawal address setup
type walletService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory interfaces.UnitOfWorkFactory) interfaces.WalletService {
	return &walletService{uowFactory: uowFactory}
}

func (s *walletService) GetSummary(ctx context.Context, userID int64) (*entities.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, apperrors.NotFound("wallet_not_found", "wallet not found for user %d", userID)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return wallet, nil
}

// SetWithdrawalAddress stores the payout address exactly once
func (s *walletService) SetWithdrawalAddress(ctx context.Context, userID int64, address string) error {
	if !validCryptoAddress(address) {
		return apperrors.Validation("invalid_address", "invalid withdrawal address")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return apperrors.NotFound("wallet_not_found", "wallet not found for user %d", userID)
	}
	if wallet.HasWithdrawalAddress() {
		return apperrors.State("address_already_set", "withdrawal address has already been set")
	}

	if err := uow.WalletRepository().SetWithdrawalAddress(ctx, userID, address); err != nil {
		return fmt.Errorf("failed to set withdrawal address: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultTransactionPageSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txs, err := uow.TransactionRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return txs, nil
}
