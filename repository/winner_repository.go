package repository

import (
	"context"
	"fmt"

	"prizedraw/domain/entities"
)

// WinnerRepository implements winner data access
type WinnerRepository struct {
	q Queryable
}

func newWinnerRepository(tx Queryable) *WinnerRepository {
	return &WinnerRepository{q: tx}
}

// NewWinnerRepository creates a winner repository over the given queryable
func NewWinnerRepository(q Queryable) *WinnerRepository {
	return &WinnerRepository{q: q}
}

// Create inserts a winner record, filling ID and CreatedAt
func (r *WinnerRepository) Create(ctx context.Context, winner *entities.Winner) error {
	query := `
		INSERT INTO winners (draw_id, user_id, position, prize_amount, ticket_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		winner.DrawID, winner.UserID, winner.Position, winner.PrizeAmount, winner.TicketNumber,
	).Scan(&winner.ID, &winner.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create winner: %w", err)
	}

	return nil
}

// ListByDraw returns the draw's winners ordered by position
func (r *WinnerRepository) ListByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error) {
	query := `
		SELECT id, draw_id, user_id, position, prize_amount, ticket_number, created_at
		FROM winners
		WHERE draw_id = $1
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var winners []*entities.Winner
	for rows.Next() {
		var w entities.Winner
		err := rows.Scan(
			&w.ID,
			&w.DrawID,
			&w.UserID,
			&w.Position,
			&w.PrizeAmount,
			&w.TicketNumber,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}

	return winners, nil
}
