package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"prizedraw/domain/entities"
)

// WithdrawalRepository implements withdrawal request data access
type WithdrawalRepository struct {
	q Queryable
}

func newWithdrawalRepository(tx Queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// NewWithdrawalRepository creates a withdrawal repository over the given queryable
func NewWithdrawalRepository(q Queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: q}
}

const withdrawalColumns = `id, user_id, amount, fee, net_amount, crypto_address,
	status, transaction_id, requested_at, reviewed_at, reviewed_by, admin_notes`

func scanWithdrawal(row pgx.Row) (*entities.WithdrawalRequest, error) {
	var w entities.WithdrawalRequest
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Amount,
		&w.Fee,
		&w.NetAmount,
		&w.CryptoAddress,
		&w.Status,
		&w.TransactionID,
		&w.RequestedAt,
		&w.ReviewedAt,
		&w.ReviewedBy,
		&w.AdminNotes,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create inserts a new withdrawal request, filling ID
func (r *WithdrawalRepository) Create(ctx context.Context, req *entities.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (user_id, amount, fee, net_amount,
			crypto_address, status, transaction_id, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		req.UserID, req.Amount, req.Fee, req.NetAmount,
		req.CryptoAddress, req.Status, req.TransactionID, req.RequestedAt,
	).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	return nil
}

func (r *WithdrawalRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*entities.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	w, err := scanWithdrawal(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request %d: %w", id, err)
	}

	return w, nil
}

// GetByID retrieves a withdrawal request by ID, returning nil if not found
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*entities.WithdrawalRequest, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a withdrawal request with a row lock, so
// concurrent reviews of the same request serialize
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.WithdrawalRequest, error) {
	return r.getByID(ctx, id, true)
}

// Update persists the request's review fields
func (r *WithdrawalRepository) Update(ctx context.Context, req *entities.WithdrawalRequest) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $2, reviewed_at = $3, reviewed_by = $4, admin_notes = $5
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		req.ID, req.Status, req.ReviewedAt, req.ReviewedBy, req.AdminNotes)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal request %d: %w", req.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal request %d not found", req.ID)
	}

	return nil
}

// ListByUser returns the user's withdrawal requests, newest first
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY requested_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests for user %d: %w", userID, err)
	}
	defer rows.Close()

	var requests []*entities.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		requests = append(requests, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawal requests: %w", err)
	}

	return requests, nil
}
