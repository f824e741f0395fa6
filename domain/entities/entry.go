package entities

import "time"

// Entry represents one purchased, uniquely-numbered chance in a draw.
// Entries are immutable once created.
type Entry struct {
	ID           int64     `db:"id"`
	DrawID       int64     `db:"draw_id"`
	UserID       int64     `db:"user_id"`
	TicketNumber string    `db:"ticket_number"`
	CreatedAt    time.Time `db:"created_at"`
}
