package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
)

// WalletRepository implements wallet data access. Credit and Debit are
// single-statement updates: the bounds check and the mutation cannot be split
// by a concurrent writer.
type WalletRepository struct {
	q Queryable
}

func newWalletRepository(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// NewWalletRepository creates a wallet repository over the given queryable
func NewWalletRepository(q Queryable) *WalletRepository {
	return &WalletRepository{q: q}
}

const walletColumns = `id, user_id, balance, deposit_address, withdrawal_address, created_at, updated_at`

func (r *WalletRepository) getByUserID(ctx context.Context, userID int64, forUpdate bool) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var w entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.DepositAddress,
		&w.WithdrawalAddress,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	return &w, nil
}

// GetByUserID retrieves a user's wallet, returning nil if not found
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.getByUserID(ctx, userID, false)
}

// GetByUserIDForUpdate retrieves a user's wallet with a row lock
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.getByUserID(ctx, userID, true)
}

// GetByDepositAddress retrieves the wallet holding the given deposit address,
// returning nil if not found
func (r *WalletRepository) GetByDepositAddress(ctx context.Context, address string) (*entities.Wallet, error) {
	if address == "" {
		return nil, nil
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE deposit_address = $1`

	var w entities.Wallet
	err := r.q.QueryRow(ctx, query, address).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.DepositAddress,
		&w.WithdrawalAddress,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet by deposit address: %w", err)
	}

	return &w, nil
}

// Create inserts a new wallet with a zero balance
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, deposit_address)
		VALUES ($1, $2)
		RETURNING id, balance, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, wallet.UserID, wallet.DepositAddress).
		Scan(&wallet.ID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wallet for user %d: %w", wallet.UserID, err)
	}

	return nil
}

// Credit increases the wallet balance by amount
func (r *WalletRepository) Credit(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit amount must not be negative: %s", amount)
	}

	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, walletID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit wallet %d: %w", walletID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d not found", walletID)
	}

	return nil
}

// Debit decreases the wallet balance by amount. Fails without effect if the
// balance does not cover the amount.
func (r *WalletRepository) Debit(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit amount must not be negative: %s", amount)
	}

	query := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
	`

	tag, err := r.q.Exec(ctx, query, walletID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit wallet %d: %w", walletID, err)
	}
	if tag.RowsAffected() == 0 {
		var balance decimal.Decimal
		err := r.q.QueryRow(ctx, `SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("wallet %d not found", walletID)
		}
		if err != nil {
			return fmt.Errorf("failed to read balance of wallet %d: %w", walletID, err)
		}
		return apperrors.InsufficientFunds("balance %s cannot cover debit of %s", balance, amount)
	}

	return nil
}

// SetDepositAddress stores the provider-issued deposit address for the user
func (r *WalletRepository) SetDepositAddress(ctx context.Context, userID int64, address string) error {
	query := `
		UPDATE wallets
		SET deposit_address = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.q.Exec(ctx, query, userID, address)
	if err != nil {
		return fmt.Errorf("failed to set deposit address for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no wallet for user %d", userID)
	}

	return nil
}

// SetWithdrawalAddress stores the payout address. The WHERE clause refuses
// the write once an address exists.
func (r *WalletRepository) SetWithdrawalAddress(ctx context.Context, userID int64, address string) error {
	query := `
		UPDATE wallets
		SET withdrawal_address = $2, updated_at = NOW()
		WHERE user_id = $1 AND (withdrawal_address IS NULL OR withdrawal_address = '')
	`

	tag, err := r.q.Exec(ctx, query, userID, address)
	if err != nil {
		return fmt.Errorf("failed to set withdrawal address for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal address already set or no wallet for user %d", userID)
	}

	return nil
}
