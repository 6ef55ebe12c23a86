package subscriptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/dmitrijs2005/snapnote/internal/filex"
)

// Registry is the set of push subscriptions, unique by endpoint.
type Registry interface {
	// Upsert adds sub, replacing a subscription with the same endpoint.
	Upsert(ctx context.Context, sub Subscription) error

	// ListAll returns a snapshot of all subscriptions.
	ListAll(ctx context.Context) ([]Subscription, error)

	// RemoveAll removes every subscription whose endpoint is listed and
	// returns how many were removed.
	RemoveAll(ctx context.Context, endpoints []string) (int, error)
}

// FileRegistry keeps subscriptions in memory and mirrors every change to a
// JSON array file before the mutating call returns.
type FileRegistry struct {
	mu   sync.Mutex
	path string
	subs []Subscription
}

var _ Registry = (*FileRegistry)(nil)

// Load reads the registry from path. A missing file yields an empty
// registry; an unreadable or malformed file is an error.
func Load(path string) (*FileRegistry, error) {
	r := &FileRegistry{path: path, subs: []Subscription{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subscriptions %s: %w", path, err)
	}

	if len(data) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, &r.subs); err != nil {
		return nil, fmt.Errorf("parse subscriptions %s: %w", path, err)
	}
	if r.subs == nil {
		r.subs = []Subscription{}
	}
	return r, nil
}

func (r *FileRegistry) Upsert(ctx context.Context, sub Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(r.subs), func(s Subscription) bool {
		return s.Endpoint == sub.Endpoint
	})
	next = append(next, sub)

	return r.commit(next)
}

func (r *FileRegistry) ListAll(ctx context.Context) ([]Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.subs), nil
}

func (r *FileRegistry) RemoveAll(ctx context.Context, endpoints []string) (int, error) {
	if len(endpoints) == 0 {
		return 0, nil
	}

	drop := make(map[string]struct{}, len(endpoints))
	for _, e := range endpoints {
		drop[e] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(r.subs), func(s Subscription) bool {
		_, ok := drop[s.Endpoint]
		return ok
	})
	removed := len(r.subs) - len(next)
	if removed == 0 {
		return 0, nil
	}

	if err := r.commit(next); err != nil {
		return 0, err
	}
	return removed, nil
}

// commit persists next and only then makes it the in-memory state, so a
// failed write leaves the registry unchanged. Caller holds r.mu.
func (r *FileRegistry) commit(next []Subscription) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("save subscriptions: %w", err)
	}
	r.subs = next
	return nil
}
