// Package collector accepts note uploads from devices. Acceptance is
// idempotent by note id: a repeated upload is acknowledged again but only
// the first one produces a receipt.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/dmitrijs2005/snapnote/internal/server/receipts"
)

// Upload is the metadata of one received note.
type Upload struct {
	ID        string
	CreatedAt int64
	Text      string
	ImageSize int64
}

type Service struct {
	receipts receipts.Repository
	logger   logging.Logger
	now      func() time.Time
}

func NewService(r receipts.Repository, logger logging.Logger) *Service {
	return &Service{receipts: r, logger: logger.With("module", "collector"), now: time.Now}
}

// Accept records the upload. It reports whether the note id was already known.
func (s *Service) Accept(ctx context.Context, u Upload) (bool, error) {
	if u.ID == "" {
		return false, fmt.Errorf("%w: missing id", common.ErrInvalidNote)
	}
	if u.ImageSize <= 0 {
		return false, fmt.Errorf("%w: missing image", common.ErrInvalidNote)
	}

	dup, err := s.receipts.Record(ctx, &receipts.Receipt{
		NoteID:     u.ID,
		CreatedAt:  u.CreatedAt,
		TextLength: len(u.Text),
		ImageSize:  u.ImageSize,
		ReceivedAt: s.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("error recording receipt: %w", err)
	}

	if dup {
		s.logger.Info(ctx, "duplicate note acknowledged", "note_id", u.ID)
	} else {
		s.logger.Info(ctx, "note received", "note_id", u.ID, "created_at", u.CreatedAt, "image_size", u.ImageSize)
	}
	return dup, nil
}
