package interfaces

import (
	"context"
	"time"

	"prizedraw/domain/entities"

	"github.com/shopspring/decimal"
)

// DepositIntentResult is returned when a deposit intent is created
type DepositIntentResult struct {
	PaymentID   string
	PayAddress  string
	PayAmount   decimal.Decimal
	PayCurrency string
}

// DepositService ingests payment-provider activity into ledger and balance
type DepositService interface {
	// CreateIntent registers a deposit with the provider and records a
	// pending ledger transaction keyed by the provider payment id
	CreateIntent(ctx context.Context, userID int64, amount decimal.Decimal) (*DepositIntentResult, error)

	// ProcessCallback reconciles one signed provider callback. Safe under
	// arbitrary duplication and reordering of deliveries.
	ProcessCallback(ctx context.Context, rawBody []byte, signature string) error
}

// EntryPurchaseResult is returned after a successful ticket purchase
type EntryPurchaseResult struct {
	Entries    []*entities.Entry
	TotalCost  decimal.Decimal
	NewBalance decimal.Decimal
}

// TicketLimitInfo summarizes a user's referral-tier ticket allowance
type TicketLimitInfo struct {
	ReferralCount int
	MaxTickets    int
	BaseCap       int
	Tiers         []entities.ReferralTier
	NextTier      *entities.ReferralTier
}

// EntryService sells validated, atomically-issued draw entries
type EntryService interface {
	// PurchaseEntries buys quantity tickets in a draw for a user
	PurchaseEntries(ctx context.Context, userID, drawID int64, quantity int) (*EntryPurchaseResult, error)

	// TicketLimits returns the user's current tier standing
	TicketLimits(ctx context.Context, userID int64) (*TicketLimitInfo, error)
}

// CreateDrawInput describes a new draw and its prize ladder. Prize amounts
// are given in payout order: the first amount funds position 1, and so on.
type CreateDrawInput struct {
	Title        string
	EntryPrice   decimal.Decimal
	MaxEntries   *int
	DrawTime     time.Time
	PrizeAmounts []decimal.Decimal
}

// DrawService provisions the draws that entries are sold into
type DrawService interface {
	// Create opens a new draw with its ordered prize positions
	Create(ctx context.Context, input CreateDrawInput) (*entities.Draw, []*entities.Prize, error)
}

// SettlementResult is returned after a draw settles
type SettlementResult struct {
	Winners      []*entities.Winner
	TotalWinners int
	TotalPayout  decimal.Decimal
}

// SettlementService selects winners and pays prizes for due draws
type SettlementService interface {
	// ExecuteDraw settles the draw, selecting up to winnerCount distinct
	// winning users and crediting mapped prizes atomically
	ExecuteDraw(ctx context.Context, drawID int64, winnerCount int) (*SettlementResult, error)
}

// WithdrawalService manages the withdrawal request lifecycle
type WithdrawalService interface {
	// Create debits and holds the full amount and opens a pending request
	Create(ctx context.Context, userID int64, amount decimal.Decimal, address string) (*entities.WithdrawalRequest, error)

	// Review transitions a request through the admin review state machine
	Review(ctx context.Context, reviewerID, withdrawalID int64, status entities.WithdrawalStatus, notes string) (*entities.WithdrawalRequest, error)

	// ListByUser returns the user's withdrawal requests, newest first
	ListByUser(ctx context.Context, userID int64) ([]*entities.WithdrawalRequest, error)
}

// WalletService covers the wallet read surface and address management
type WalletService interface {
	// GetSummary returns the user's wallet
	GetSummary(ctx context.Context, userID int64) (*entities.Wallet, error)

	// SetWithdrawalAddress stores the payout address. The address may be set
	// exactly once; later calls fail with a state error.
	SetWithdrawalAddress(ctx context.Context, userID int64, address string) error

	// ListTransactions returns the user's ledger history, newest first
	ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)
}

// UserService covers account registration and wallet provisioning
type UserService interface {
	// Register creates a user and wallet, attributing a referrer when the
	// given referral code matches an existing user
	Register(ctx context.Context, username string, referralCode string) (*entities.User, error)
}
