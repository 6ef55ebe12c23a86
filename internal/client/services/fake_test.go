package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/snapnote/internal/client/client"
	"github.com/dmitrijs2005/snapnote/internal/client/models"
	"github.com/dmitrijs2005/snapnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu        sync.Mutex
	reject    map[string]bool
	uploaded  []string
	reports   []int
	onUpload  func(n *models.Note)
	reportErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{reject: map[string]bool{}}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) UploadNote(ctx context.Context, n *models.Note) error {
	if f.onUpload != nil {
		f.onUpload(n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, n.ID)
	if f.reject[n.ID] {
		return errors.Join(common.ErrTransferFailure, errors.New("503"))
	}
	return nil
}

func (f *fakeClient) ReportSynced(ctx context.Context, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, count)
	return f.reportErr
}

func (f *fakeClient) snapshot() ([]string, []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploaded...), append([]int(nil), f.reports...)
}

func newStore(t *testing.T) notes.Repository {
	t.Helper()
	db, err := client.OpenDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return notes.NewSQLiteRepository(db)
}

func insertPending(t *testing.T, r notes.Repository, id string, createdAt int64) {
	t.Helper()
	require.NoError(t, r.Insert(context.Background(), &models.Note{
		ID: id, CreatedAt: createdAt, Text: "t-" + id, Image: []byte{0xff, 0xd8}, Status: models.StatusPending,
	}))
}
