package repository

import (
	"context"
	"fmt"

	"prizedraw/domain/entities"
)

// EntryRepository implements entry data access
type EntryRepository struct {
	q Queryable
}

func newEntryRepository(tx Queryable) *EntryRepository {
	return &EntryRepository{q: tx}
}

// NewEntryRepository creates an entry repository over the given queryable
func NewEntryRepository(q Queryable) *EntryRepository {
	return &EntryRepository{q: q}
}

// CreateBatch inserts all entries in a single batch insert
func (r *EntryRepository) CreateBatch(ctx context.Context, entries []*entities.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `INSERT INTO entries (draw_id, user_id, ticket_number) VALUES `

	values := make([]any, 0, len(entries)*3)
	for i, entry := range entries {
		if i > 0 {
			query += ", "
		}
		offset := i * 3
		query += fmt.Sprintf("($%d, $%d, $%d)", offset+1, offset+2, offset+3)
		values = append(values, entry.DrawID, entry.UserID, entry.TicketNumber)
	}
	query += " RETURNING id, created_at"

	rows, err := r.q.Query(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to batch create entries: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&entries[i].ID, &entries[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan entry result: %w", err)
		}
		i++
	}

	return rows.Err()
}

// CountByUserAndDraw returns the number of entries the user holds in the draw
func (r *EntryRepository) CountByUserAndDraw(ctx context.Context, userID, drawID int64) (int, error) {
	query := `SELECT COUNT(*) FROM entries WHERE user_id = $1 AND draw_id = $2`

	var count int
	if err := r.q.QueryRow(ctx, query, userID, drawID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for user %d in draw %d: %w", userID, drawID, err)
	}

	return count, nil
}

// ListByDraw returns all entries in the draw in creation order
func (r *EntryRepository) ListByDraw(ctx context.Context, drawID int64) ([]*entities.Entry, error) {
	query := `
		SELECT id, draw_id, user_id, ticket_number, created_at
		FROM entries
		WHERE draw_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var entries []*entities.Entry
	for rows.Next() {
		var e entities.Entry
		if err := rows.Scan(&e.ID, &e.DrawID, &e.UserID, &e.TicketNumber, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}
