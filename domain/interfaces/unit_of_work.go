package interfaces

import (
	"context"

	"prizedraw/domain/events"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// UnitOfWork defines the interface for transactional repository operations.
// Every multi-step financial mutation runs inside one serializable unit of
// work: the balance pre-checks and the writes share the same transaction, so
// concurrent operations on the same wallet or draw serialize correctly.
type UnitOfWork interface {
	// Begin starts a new serializable transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	WalletRepository() WalletRepository
	TransactionRepository() TransactionRepository
	DrawRepository() DrawRepository
	EntryRepository() EntryRepository
	WinnerRepository() WinnerRepository
	WithdrawalRepository() WithdrawalRepository

	// EventBus returns the transaction-scoped event publisher
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
