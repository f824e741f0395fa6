package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrawStatus represents the lifecycle state of a draw. Transitions are
// monotonic: UPCOMING -> ACTIVE -> DRAWING -> COMPLETED, never backward.
type DrawStatus string

const (
	DrawStatusUpcoming  DrawStatus = "UPCOMING"
	DrawStatusActive    DrawStatus = "ACTIVE"
	DrawStatusDrawing   DrawStatus = "DRAWING"
	DrawStatusCompleted DrawStatus = "COMPLETED"
)

// Draw represents a time-boxed prize pool. Entries bought before DrawTime are
// eligible for settlement.
type Draw struct {
	ID             int64           `db:"id"`
	Title          string          `db:"title"`
	Status         DrawStatus      `db:"status"`
	EntryPrice     decimal.Decimal `db:"entry_price"`
	MaxEntries     *int            `db:"max_entries"` // nil means unlimited
	CurrentEntries int             `db:"current_entries"`
	DrawTime       time.Time       `db:"draw_time"` // scheduled settlement time, also the entry cutoff
	CreatedAt      time.Time       `db:"created_at"`
}

// Prize represents one ordered prize position within a draw
type Prize struct {
	ID       int64           `db:"id"`
	DrawID   int64           `db:"draw_id"`
	Position int             `db:"position"`
	Amount   decimal.Decimal `db:"amount"`
}

// IsSettledOrSettling returns true once settlement has started or finished
func (d *Draw) IsSettledOrSettling() bool {
	return d.Status == DrawStatusDrawing || d.Status == DrawStatusCompleted
}

// EntryWindowOpen returns true if entries may still be purchased at the given time
func (d *Draw) EntryWindowOpen(now time.Time) bool {
	return !d.IsSettledOrSettling() && now.Before(d.DrawTime)
}

// IsDue returns true once the scheduled settlement time has been reached
func (d *Draw) IsDue(now time.Time) bool {
	return !now.Before(d.DrawTime)
}

// HasCapacityFor returns true if quantity more entries fit under max_entries
func (d *Draw) HasCapacityFor(quantity int) bool {
	if d.MaxEntries == nil {
		return true
	}
	return d.CurrentEntries+quantity <= *d.MaxEntries
}

// TotalCost returns the cost of quantity entries at the draw's entry price
func (d *Draw) TotalCost(quantity int) decimal.Decimal {
	return d.EntryPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
