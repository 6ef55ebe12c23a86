// Package services contains the device agent's application services: the
// capture workflow (NoteService) and the sync engine (SyncService).
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/client/client"
	"github.com/dmitrijs2005/snapnote/internal/client/models"
	"github.com/dmitrijs2005/snapnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/google/uuid"
)

// Trigger names the external event that requested a sync run. The engine
// behaves identically for every source.
type Trigger string

const (
	TriggerConnectivity Trigger = "connectivity"
	TriggerScheduled    Trigger = "scheduled"
	TriggerCapture      Trigger = "capture"
	TriggerManual       Trigger = "manual"
)

const (
	// reportTimeout bounds the sync report sent after a batch.
	reportTimeout = 10 * time.Second

	// leasePollInterval is how often a run waiting for another process
	// retries the run lease.
	leasePollInterval = 50 * time.Millisecond

	// leaseGrace is added to the upload timeout to get the lease TTL.
	// The lease is renewed before every upload.
	leaseGrace = reportTimeout + 5*time.Second

	// unboundedLeaseTTL is used when uploads have no timeout.
	unboundedLeaseTTL = 5 * time.Minute
)

// SyncService drains pending notes to the collector.
//
// Contract:
//   - Run performs one sync run; concurrent calls are serialised, also
//     across processes sharing the note database (see notes.RunLease).
//   - Loop performs one run per trigger received until ctx is done or the
//     channel is closed.
type SyncService interface {
	Run(ctx context.Context) (models.SyncBatchResult, error)
	Loop(ctx context.Context, triggers <-chan Trigger)
}

type syncService struct {
	mu            sync.Mutex
	client        client.Client
	notes         notes.Repository
	logger        logging.Logger
	uploadTimeout time.Duration
	holder        string
	leaseTTL      time.Duration
}

// NewSyncService builds the sync engine. uploadTimeout bounds every single
// note transfer; zero disables the bound.
func NewSyncService(c client.Client, repo notes.Repository, logger logging.Logger, uploadTimeout time.Duration) SyncService {
	ttl := unboundedLeaseTTL
	if uploadTimeout > 0 {
		ttl = uploadTimeout + leaseGrace
	}
	return &syncService{
		client:        c,
		notes:         repo,
		logger:        logger.With("module", "sync"),
		uploadTimeout: uploadTimeout,
		holder:        uuid.NewString(),
		leaseTTL:      ttl,
	}
}

// Run uploads the pending snapshot oldest first, one note at a time, and
// stops at the first failed transfer so that no note is marked synced while
// an older one is still pending. The number of synced notes is reported to
// the collector whenever at least one upload was attempted, even if it is 0.
func (s *syncService) Run(ctx context.Context) (models.SyncBatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res models.SyncBatchResult

	if err := s.acquireLease(ctx); err != nil {
		return res, err
	}
	defer s.releaseLease(ctx)

	pending, err := s.notes.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return res, fmt.Errorf("error retrieving pending notes: %w", err)
	}
	if len(pending) == 0 {
		s.logger.Debug(ctx, "nothing to sync")
		return res, nil
	}

	var runErr error
	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		held, err := s.notes.RenewRunLease(ctx, s.holder, s.leaseTTL)
		if err != nil {
			runErr = err
			break
		}
		if !held {
			runErr = common.ErrLeaseLost
			break
		}

		res.Attempted++
		if err := s.upload(ctx, n); err != nil {
			s.logger.Warn(ctx, "upload failed, batch stopped", "note_id", n.ID, "error", err,
				"left_pending", len(pending)-res.Synced)
			break
		}

		if err := s.notes.SetStatus(ctx, n.ID, models.StatusSynced); err != nil {
			runErr = fmt.Errorf("error marking note %s synced: %w", n.ID, err)
			break
		}
		res.Synced++
	}

	if res.Attempted > 0 {
		s.report(ctx, res.Synced)
	}

	s.logger.Info(ctx, "sync run finished", "attempted", res.Attempted, "synced", res.Synced, "pending", len(pending)-res.Synced)
	return res, runErr
}

// acquireLease waits until no other process is running a sync on the same
// note database. The queue is read only after the lease is held, so a run
// never sees notes another run is still uploading.
func (s *syncService) acquireLease(ctx context.Context) error {
	t := time.NewTicker(leasePollInterval)
	defer t.Stop()

	logged := false
	for {
		current, ok, err := s.notes.AcquireRunLease(ctx, s.holder, s.leaseTTL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("error acquiring sync lease: %w", err)
		}
		if ok {
			return nil
		}
		if !logged {
			s.logger.Info(ctx, "another sync run is in progress, waiting", "holder", current)
			logged = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *syncService) releaseLease(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	if err := s.notes.ReleaseRunLease(ctx, s.holder); err != nil {
		s.logger.Warn(ctx, "failed to release sync lease", "error", err)
	}
}

func (s *syncService) upload(ctx context.Context, n *models.Note) error {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}
	return s.client.UploadNote(ctx, n)
}

// report is best effort: the notes are already synced and a lost
// confirmation only costs the user a notification.
func (s *syncService) report(ctx context.Context, count int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	if err := s.client.ReportSynced(ctx, count); err != nil {
		s.logger.Warn(ctx, "failed to report sync result", "count", count, "error", err)
	}
}

func (s *syncService) Loop(ctx context.Context, triggers <-chan Trigger) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-triggers:
			if !ok {
				return
			}
			if _, err := s.Run(ctx); err != nil {
				s.logger.Error(ctx, "sync run failed", "trigger", string(t), "error", err)
			}
		}
	}
}
