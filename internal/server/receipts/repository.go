// Package receipts records which notes the collector has accepted, so a
// re-upload of the same id is acknowledged without being counted twice.
// Note content is not kept.
package receipts

import (
	"context"
	"time"
)

// Receipt describes one accepted note upload.
type Receipt struct {
	NoteID     string
	CreatedAt  int64
	TextLength int
	ImageSize  int64
	ReceivedAt time.Time
}

// Repository is the receipt ledger keyed by note id.
type Repository interface {
	// Record stores r unless a receipt for r.NoteID exists; duplicate
	// reports which case happened.
	Record(ctx context.Context, r *Receipt) (duplicate bool, err error)

	// Count returns the number of distinct notes received.
	Count(ctx context.Context) (int, error)
}
