package interfaces

import (
	"context"

	"prizedraw/domain/entities"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByReferralCode retrieves a user by their referral code, nil if not found
	GetByReferralCode(ctx context.Context, code string) (*entities.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// CountReferrals returns how many users name the given user as referrer
	CountReferrals(ctx context.Context, userID int64) (int, error)
}

// WalletRepository defines the interface for wallet data access. Credit and
// Debit are the only balance mutation paths in the system; both are single
// bounds-checked statements so a stale read can never drive a balance negative.
type WalletRepository interface {
	// GetByUserID retrieves a user's wallet, nil if not found
	GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserIDForUpdate retrieves a user's wallet with a row lock
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByDepositAddress retrieves the wallet holding the given deposit address
	GetByDepositAddress(ctx context.Context, address string) (*entities.Wallet, error)

	// Create creates a wallet for a user
	Create(ctx context.Context, wallet *entities.Wallet) error

	// Credit increases the wallet balance; always succeeds for a known wallet
	Credit(ctx context.Context, walletID int64, amount decimal.Decimal) error

	// Debit decreases the wallet balance; fails with an insufficient-funds
	// error if the resulting balance would be negative
	Debit(ctx context.Context, walletID int64, amount decimal.Decimal) error

	// SetDepositAddress updates the wallet's deposit address
	SetDepositAddress(ctx context.Context, userID int64, address string) error

	// SetWithdrawalAddress sets the immutable withdrawal address
	SetWithdrawalAddress(ctx context.Context, userID int64, address string) error
}

// TransactionRepository defines the interface for ledger data access
type TransactionRepository interface {
	// Create inserts a transaction and fills its ID and timestamps
	Create(ctx context.Context, tx *entities.Transaction) error

	// GetByPaymentID retrieves the transaction holding the provider payment
	// id, nil if not found. Used as the deposit idempotency lookup.
	GetByPaymentID(ctx context.Context, paymentID string) (*entities.Transaction, error)

	// GetByPaymentIDForUpdate is GetByPaymentID with a row lock
	GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*entities.Transaction, error)

	// UpdateStatus sets the transaction status
	UpdateStatus(ctx context.Context, id int64, status entities.TransactionStatus) error

	// UpdateDepositProgress sets a deposit's reported amount, total credited
	// amount, and status together
	UpdateDepositProgress(ctx context.Context, id int64, amount, creditedAmount decimal.Decimal, status entities.TransactionStatus) error

	// CountCompletedDeposits returns the user's completed deposit count
	CountCompletedDeposits(ctx context.Context, userID int64) (int, error)

	// HasReferralBonusFor reports whether the referrer was already credited
	// a bonus for the given referred user
	HasReferralBonusFor(ctx context.Context, referrerID, referredUserID int64) (bool, error)

	// ListByUser returns a user's most recent transactions
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// Create creates a draw with its prize positions
	Create(ctx context.Context, draw *entities.Draw, prizes []*entities.Prize) error

	// GetByID retrieves a draw by ID, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)

	// GetByIDForUpdate retrieves a draw with a row lock, blocking concurrent
	// settlement attempts
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error)

	// UpdateStatus sets the draw status
	UpdateStatus(ctx context.Context, id int64, status entities.DrawStatus) error

	// IncrementEntries bumps the draw's running entry counter
	IncrementEntries(ctx context.Context, id int64, delta int) error

	// GetPrizes returns the draw's prize positions ordered by position
	GetPrizes(ctx context.Context, drawID int64) ([]*entities.Prize, error)
}

// EntryRepository defines the interface for entry data access
type EntryRepository interface {
	// CreateBatch inserts multiple entries in a single statement
	CreateBatch(ctx context.Context, entries []*entities.Entry) error

	// CountByUserAndDraw returns how many entries a user holds in a draw
	CountByUserAndDraw(ctx context.Context, userID, drawID int64) (int, error)

	// ListByDraw returns all entries for a draw
	ListByDraw(ctx context.Context, drawID int64) ([]*entities.Entry, error)
}

// WinnerRepository defines the interface for winner data access
type WinnerRepository interface {
	// Create inserts a winner record
	Create(ctx context.Context, winner *entities.Winner) error

	// ListByDraw returns a draw's winners ordered by position
	ListByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error)
}

// WithdrawalRepository defines the interface for withdrawal-request data access
type WithdrawalRepository interface {
	// Create inserts a withdrawal request and fills its ID and timestamps
	Create(ctx context.Context, req *entities.WithdrawalRequest) error

	// GetByID retrieves a request by ID, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.WithdrawalRequest, error)

	// GetByIDForUpdate retrieves a request with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.WithdrawalRequest, error)

	// Update persists review fields (status, reviewer, notes, reviewed_at)
	Update(ctx context.Context, req *entities.WithdrawalRequest) error

	// ListByUser returns a user's withdrawal requests, newest first
	ListByUser(ctx context.Context, userID int64) ([]*entities.WithdrawalRequest, error)
}
