package events

import "context"

// TransactionalBus holds events pending a transaction outcome. Events are
// published to the underlying bus only on Flush (after commit) and dropped
// on Discard (after rollback), so observers never see uncommitted state.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional publisher over the given bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush or Discard
func (b *TransactionalBus) Publish(event Event) error {
	b.pending = append(b.pending, event)
	return nil
}

// Flush emits all pending events to the underlying bus
func (b *TransactionalBus) Flush(ctx context.Context) {
	for _, event := range b.pending {
		b.real.Emit(ctx, event)
	}
	b.pending = b.pending[:0]
}

// Discard drops all pending events without emitting them
func (b *TransactionalBus) Discard() {
	b.pending = b.pending[:0]
}
