package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/client/models"
)

// Repository describes the durable note store.
type Repository interface {
	// Insert stores a new pending note. It fails with common.ErrDuplicateKey
	// if the id already exists and with common.ErrInvalidNote if the note is
	// not pending or has no id.
	Insert(ctx context.Context, note *models.Note) error

	// ListAll returns every note, newest first.
	ListAll(ctx context.Context) ([]*models.Note, error)

	// ListByStatus returns the notes in the given status, oldest first.
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Note, error)

	// SetStatus moves a note to status. Unknown ids are ignored.
	SetStatus(ctx context.Context, id string, status models.Status) error

	// Count returns the number of notes in the given status.
	Count(ctx context.Context, status models.Status) (int, error)

	RunLease
}

// RunLease is a claim on the device queue shared by every process that opens
// the same database. At most one sync run holds it at a time.
type RunLease interface {
	// AcquireRunLease returns the current holder and whether it is holder.
	AcquireRunLease(ctx context.Context, holder string, ttl time.Duration) (string, bool, error)

	// RenewRunLease reports false once the lease was taken over.
	RenewRunLease(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	ReleaseRunLease(ctx context.Context, holder string) error
}
