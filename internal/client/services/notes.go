package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/client/models"
	"github.com/dmitrijs2005/snapnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/google/uuid"
)

// NoteService is the capture workflow: it turns text + image into a pending
// note and lists stored notes for display.
type NoteService interface {
	Add(ctx context.Context, text string, image []byte) (*models.Note, error)
	List(ctx context.Context) ([]*models.Note, error)
	Counts(ctx context.Context) (pending int, synced int, err error)
}

type noteService struct {
	repo       notes.Repository
	onCaptured func()
	now        func() time.Time

	mu   sync.Mutex
	last int64
}

// NewNoteService returns a NoteService. onCaptured, if not nil, is called
// after every stored note; the agent uses it to request a sync run.
func NewNoteService(repo notes.Repository, onCaptured func()) NoteService {
	return &noteService{repo: repo, onCaptured: onCaptured, now: time.Now}
}

// Add stores a new pending note with a fresh id. CreatedAt is the current
// time in milliseconds, never earlier than the previous note of this process.
func (s *noteService) Add(ctx context.Context, text string, image []byte) (*models.Note, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", common.ErrInvalidNote)
	}

	n := &models.Note{
		ID:        uuid.NewString(),
		CreatedAt: s.nextTimestamp(),
		Text:      strings.TrimSpace(text),
		Image:     image,
		Status:    models.StatusPending,
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}

	if s.onCaptured != nil {
		s.onCaptured()
	}
	return n, nil
}

func (s *noteService) List(ctx context.Context) ([]*models.Note, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return items, nil
}

func (s *noteService) Counts(ctx context.Context) (int, int, error) {
	p, err := s.repo.Count(ctx, models.StatusPending)
	if err != nil {
		return 0, 0, err
	}
	d, err := s.repo.Count(ctx, models.StatusSynced)
	if err != nil {
		return 0, 0, err
	}
	return p, d, nil
}

func (s *noteService) nextTimestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	if ts < s.last {
		ts = s.last
	}
	s.last = ts
	return ts
}
