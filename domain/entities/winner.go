package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Winner links a settled draw's prize position to the selected ticket and
// user. At most one winner exists per (draw, user) pair; the record is never
// mutated after settlement. PrizeAmount is a snapshot taken at settlement;
// nil means the position carried no monetary prize.
type Winner struct {
	ID           int64            `db:"id"`
	DrawID       int64            `db:"draw_id"`
	UserID       int64            `db:"user_id"`
	Position     int              `db:"position"`
	PrizeAmount  *decimal.Decimal `db:"prize_amount"`
	TicketNumber string           `db:"ticket_number"`
	CreatedAt    time.Time        `db:"created_at"`
}

// HasPrize returns true if the position carried a monetary amount
func (w *Winner) HasPrize() bool {
	return w.PrizeAmount != nil && w.PrizeAmount.IsPositive()
}
