package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"prizedraw/domain/entities"
)

// DrawRepository implements draw and prize data access
type DrawRepository struct {
	q Queryable
}

func newDrawRepository(tx Queryable) *DrawRepository {
	return &DrawRepository{q: tx}
}

// NewDrawRepository creates a draw repository over the given queryable
func NewDrawRepository(q Queryable) *DrawRepository {
	return &DrawRepository{q: q}
}

// Create inserts a draw together with its ordered prize positions
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw, prizes []*entities.Prize) error {
	query := `
		INSERT INTO draws (title, status, entry_price, max_entries, draw_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, current_entries, created_at
	`

	err := r.q.QueryRow(ctx, query,
		draw.Title, draw.Status, draw.EntryPrice, draw.MaxEntries, draw.DrawTime,
	).Scan(&draw.ID, &draw.CurrentEntries, &draw.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}

	for _, prize := range prizes {
		prize.DrawID = draw.ID
		err := r.q.QueryRow(ctx,
			`INSERT INTO prizes (draw_id, position, amount) VALUES ($1, $2, $3) RETURNING id`,
			prize.DrawID, prize.Position, prize.Amount,
		).Scan(&prize.ID)
		if err != nil {
			return fmt.Errorf("failed to create prize at position %d: %w", prize.Position, err)
		}
	}

	return nil
}

func (r *DrawRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*entities.Draw, error) {
	query := `
		SELECT id, title, status, entry_price, max_entries, current_entries, draw_time, created_at
		FROM draws
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var d entities.Draw
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Title,
		&d.Status,
		&d.EntryPrice,
		&d.MaxEntries,
		&d.CurrentEntries,
		&d.DrawTime,
		&d.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d: %w", id, err)
	}

	return &d, nil
}

// GetByID retrieves a draw by ID, returning nil if not found
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a draw with a row lock, serializing entry
// purchases and settlement against each other
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	return r.getByID(ctx, id, true)
}

// UpdateStatus sets the draw status
func (r *DrawRepository) UpdateStatus(ctx context.Context, id int64, status entities.DrawStatus) error {
	query := `UPDATE draws SET status = $2 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update draw %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found", id)
	}

	return nil
}

// IncrementEntries raises the draw's entry count by delta
func (r *DrawRepository) IncrementEntries(ctx context.Context, id int64, delta int) error {
	query := `UPDATE draws SET current_entries = current_entries + $2 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("failed to increment entries for draw %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found", id)
	}

	return nil
}

// GetPrizes returns the draw's prizes ordered by position
func (r *DrawRepository) GetPrizes(ctx context.Context, drawID int64) ([]*entities.Prize, error) {
	query := `
		SELECT id, draw_id, position, amount
		FROM prizes
		WHERE draw_id = $1
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prizes for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var prizes []*entities.Prize
	for rows.Next() {
		var p entities.Prize
		if err := rows.Scan(&p.ID, &p.DrawID, &p.Position, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prizes: %w", err)
	}

	return prizes, nil
}
