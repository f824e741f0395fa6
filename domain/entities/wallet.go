package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet represents a user's custodial balance. The balance never goes
// negative; every mutation routes through the wallet repository inside a
// transaction scope together with its ledger write.
type Wallet struct {
	ID                int64           `db:"id"`
	UserID            int64           `db:"user_id"`
	Balance           decimal.Decimal `db:"balance"`
	DepositAddress    string          `db:"deposit_address"`
	WithdrawalAddress *string         `db:"withdrawal_address"` // settable exactly once
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// HasWithdrawalAddress returns true once the immutable withdrawal address is set
func (w *Wallet) HasWithdrawalAddress() bool {
	return w.WithdrawalAddress != nil && *w.WithdrawalAddress != ""
}

// CanAfford returns true if the balance covers the given amount
func (w *Wallet) CanAfford(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
