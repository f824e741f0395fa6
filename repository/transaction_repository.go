package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"prizedraw/domain/entities"
)

// TransactionRepository implements ledger transaction data access
type TransactionRepository struct {
	q Queryable
}

func newTransactionRepository(tx Queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// NewTransactionRepository creates a transaction repository over the given queryable
func NewTransactionRepository(q Queryable) *TransactionRepository {
	return &TransactionRepository{q: q}
}

const transactionColumns = `id, user_id, type, status, amount, credited_amount,
	payment_id, withdrawal_request_id, related_user_id, description, created_at, updated_at`

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var t entities.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.CreditedAmount,
		&t.PaymentID,
		&t.WithdrawalRequestID,
		&t.RelatedUserID,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new transaction, filling ID and timestamps
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, status, amount, credited_amount,
			payment_id, withdrawal_request_id, related_user_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.UserID, tx.Type, tx.Status, tx.Amount, tx.CreditedAmount,
		tx.PaymentID, tx.WithdrawalRequestID, tx.RelatedUserID, tx.Description,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) getByPaymentID(ctx context.Context, paymentID string, forUpdate bool) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE payment_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	t, err := scanTransaction(r.q.QueryRow(ctx, query, paymentID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by payment id: %w", err)
	}

	return t, nil
}

// GetByPaymentID retrieves the transaction holding the given provider payment
// id, returning nil if not found
func (r *TransactionRepository) GetByPaymentID(ctx context.Context, paymentID string) (*entities.Transaction, error) {
	return r.getByPaymentID(ctx, paymentID, false)
}

// GetByPaymentIDForUpdate retrieves the transaction for a payment id with a row lock
func (r *TransactionRepository) GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*entities.Transaction, error) {
	return r.getByPaymentID(ctx, paymentID, true)
}

// UpdateStatus sets the transaction status
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status entities.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}

	return nil
}

// UpdateDepositProgress records the running amounts and status of a deposit
// as partial payments accumulate
func (r *TransactionRepository) UpdateDepositProgress(ctx context.Context, id int64, amount, creditedAmount decimal.Decimal, status entities.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET amount = $2, credited_amount = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, amount, creditedAmount, status)
	if err != nil {
		return fmt.Errorf("failed to update deposit progress for transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}

	return nil
}

// CountCompletedDeposits returns the number of COMPLETED deposit transactions
// for the user
func (r *TransactionRepository) CountCompletedDeposits(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND type = $2 AND status = $3
	`

	var count int
	err := r.q.QueryRow(ctx, query, userID,
		entities.TransactionTypeDeposit, entities.TransactionStatusCompleted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed deposits for user %d: %w", userID, err)
	}

	return count, nil
}

// HasReferralBonusFor reports whether the referrer was already paid a bonus
// for the given referred user
func (r *TransactionRepository) HasReferralBonusFor(ctx context.Context, referrerID, referredUserID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND type = $2 AND related_user_id = $3
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, referrerID,
		entities.TransactionTypeReferralBonus, referredUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check referral bonus existence: %w", err)
	}

	return exists, nil
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txs []*entities.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}
