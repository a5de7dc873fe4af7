// Package journal keeps an append-only SQLite log of build runs.
package journal

import (
	"context"
	"time"
)

// Store persists and retrieves journal events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, runID, eventType string, payload []byte, metadata map[string]string) error

	// GetByRunID retrieves all events of one run in append order.
	GetByRunID(ctx context.Context, runID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// Event is one journaled fact.
type Event struct {
	ID        int64
	RunID     string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}
