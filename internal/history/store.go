package history

import (
	"context"
	"time"
)

// Store persists and retrieves ledger events.
type Store interface {
	// Append adds an event. A zero Timestamp is replaced with the store's clock.
	Append(ctx context.Context, event Event) error

	// ByBuildID returns the events of one run in insertion order.
	ByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// Range returns events whose timestamp lies within [start, end].
	Range(ctx context.Context, start, end time.Time) ([]Event, error)

	// All returns every event in insertion order.
	All(ctx context.Context) ([]Event, error)

	Close() error
}

// Ledger stamps typed payloads with a run ID and appends them to a Store.
// A nil *Ledger discards every record, so callers need no nil checks.
type Ledger struct {
	store Store
	now   func() time.Time
}

// NewLedger wraps store. now defaults to time.Now.
func NewLedger(store Store, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, now: now}
}

// Record appends payload as an event of eventType for buildID.
func (l *Ledger) Record(ctx context.Context, buildID, eventType string, payload any) error {
	if l == nil || l.store == nil {
		return nil
	}
	ev, err := NewEvent(buildID, eventType, payload, l.now())
	if err != nil {
		return err
	}
	return l.store.Append(ctx, ev)
}

// Store exposes the underlying store for projections.
func (l *Ledger) Store() Store {
	if l == nil {
		return nil
	}
	return l.store
}
