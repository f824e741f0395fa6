package events

import (
	"context"
	"sync"

	"prizedraw/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeDepositCompleted  EventType = "deposit_completed"
	EventTypeDrawSettled       EventType = "draw_settled"
	EventTypeWithdrawalDecided EventType = "withdrawal_decided"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      string
	NewBalance      string
	TransactionType entities.TransactionType
	ChangeAmount    string
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// DepositCompletedEvent represents a deposit that finished crediting
type DepositCompletedEvent struct {
	UserID    int64
	PaymentID string
	Amount    string
}

func (e DepositCompletedEvent) Type() EventType {
	return EventTypeDepositCompleted
}

// DrawSettledEvent represents a draw whose winners were paid out
type DrawSettledEvent struct {
	DrawID      int64
	WinnerCount int
}

func (e DrawSettledEvent) Type() EventType {
	return EventTypeDrawSettled
}

// WithdrawalDecidedEvent represents a withdrawal review reaching a terminal state
type WithdrawalDecidedEvent struct {
	WithdrawalID int64
	UserID       int64
	Status       entities.WithdrawalStatus
}

func (e WithdrawalDecidedEvent) Type() EventType {
	return EventTypeWithdrawalDecided
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers asynchronously
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
