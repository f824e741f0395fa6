package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance-affecting event
type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeEntryPurchase TransactionType = "ENTRY_PURCHASE"
	TransactionTypePrizeWin      TransactionType = "PRIZE_WIN"
	TransactionTypeReferralBonus TransactionType = "REFERRAL_BONUS"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
)

// TransactionStatus represents the lifecycle state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is an immutable, typed ledger record of a balance-affecting
// event. For deposits, Amount tracks the total credited so far (partial
// payments raise it incrementally) and PaymentID is the provider's unique
// payment identifier used as the idempotency key.
type Transaction struct {
	ID                  int64             `db:"id"`
	UserID              int64             `db:"user_id"`
	Type                TransactionType   `db:"type"`
	Status              TransactionStatus `db:"status"`
	Amount              decimal.Decimal   `db:"amount"`
	CreditedAmount      decimal.Decimal   `db:"credited_amount"` // total actually credited so far (deposits only)
	PaymentID           *string           `db:"payment_id"`
	WithdrawalRequestID *int64            `db:"withdrawal_request_id"`
	RelatedUserID       *int64            `db:"related_user_id"` // for referral bonuses: the referred depositor
	Description         string            `db:"description"`
	CreatedAt           time.Time         `db:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at"`
}

// IsTerminal returns true if the status can no longer change
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted ||
		s == TransactionStatusFailed ||
		s == TransactionStatusCancelled
}

// IsCredit returns true if the transaction type increases the balance
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeDeposit ||
		t == TransactionTypePrizeWin ||
		t == TransactionTypeReferralBonus
}

// String returns the string representation of the transaction type
func (t TransactionType) String() string {
	return string(t)
}
