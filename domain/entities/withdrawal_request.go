package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the review state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending     WithdrawalStatus = "PENDING"
	WithdrawalStatusUnderReview WithdrawalStatus = "UNDER_REVIEW"
	WithdrawalStatusCompleted   WithdrawalStatus = "COMPLETED"
	WithdrawalStatusRejected    WithdrawalStatus = "REJECTED"
)

// WithdrawalRequest represents a reviewable request to move funds off the
// platform. The full Amount is debited (held) at creation; NetAmount is what
// actually leaves the platform after the flat fee.
type WithdrawalRequest struct {
	ID            int64            `db:"id"`
	UserID        int64            `db:"user_id"`
	Amount        decimal.Decimal  `db:"amount"`
	Fee           decimal.Decimal  `db:"fee"`
	NetAmount     decimal.Decimal  `db:"net_amount"`
	CryptoAddress string           `db:"crypto_address"`
	Status        WithdrawalStatus `db:"status"`
	TransactionID int64            `db:"transaction_id"`
	RequestedAt   time.Time        `db:"requested_at"`
	ReviewedAt    *time.Time       `db:"reviewed_at"`
	ReviewedBy    *int64           `db:"reviewed_by"`
	AdminNotes    *string          `db:"admin_notes"`
}

// IsTerminal returns true once the request can no longer change state
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusRejected
}

// IsValid returns true if the status is one of the known review states
func (s WithdrawalStatus) IsValid() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusUnderReview,
		WithdrawalStatusCompleted, WithdrawalStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the request may move to the target status.
// Terminal states accept no transitions; re-applying the current status is
// treated as a no-op by the caller, not a transition.
func (r *WithdrawalRequest) CanTransitionTo(target WithdrawalStatus) bool {
	if r.Status.IsTerminal() {
		return false
	}
	switch r.Status {
	case WithdrawalStatusPending:
		return target == WithdrawalStatusUnderReview ||
			target == WithdrawalStatusCompleted ||
			target == WithdrawalStatusRejected
	case WithdrawalStatusUnderReview:
		return target == WithdrawalStatusCompleted ||
			target == WithdrawalStatusRejected
	}
	return false
}

// ComputeWithdrawalFee returns the flat-percentage fee and the net amount for
// a withdrawal, both rounded to 2 decimal places.
func ComputeWithdrawalFee(amount decimal.Decimal, feePercent decimal.Decimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
	net = amount.Sub(fee)
	return fee, net
}
