// Package agent drives the sync engine from the device's trigger sources:
// connectivity changes, a periodic schedule and local captures.
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/client/client"
	"github.com/dmitrijs2005/snapnote/internal/client/models"
	"github.com/dmitrijs2005/snapnote/internal/client/services"
	"github.com/dmitrijs2005/snapnote/internal/logging"
)

const pingTimeout = 3 * time.Second

// Agent owns the trigger channel. Triggers are coalesced: while a run is in
// flight at most one more run is queued, whatever its source.
type Agent struct {
	client   client.Client
	sync     services.SyncService
	logger   logging.Logger
	triggers chan services.Trigger

	onlineCheckInterval time.Duration
	syncInterval        time.Duration

	mu     sync.RWMutex
	online bool
}

// New creates an Agent. A zero syncInterval disables scheduled runs and a
// zero onlineCheckInterval disables the connectivity watcher.
func New(c client.Client, s services.SyncService, logger logging.Logger, onlineCheckInterval, syncInterval time.Duration) *Agent {
	return &Agent{
		client:              c,
		sync:                s,
		logger:              logger.With("module", "agent"),
		triggers:            make(chan services.Trigger, 1),
		onlineCheckInterval: onlineCheckInterval,
		syncInterval:        syncInterval,
	}
}

// Trigger requests a sync run. It never blocks; a request made while one is
// already queued is merged into it.
func (a *Agent) Trigger(src services.Trigger) {
	select {
	case a.triggers <- src:
	default:
		a.logger.Debug(context.Background(), "sync already queued", "trigger", string(src))
	}
}

// Drain performs the queued run, if any, in the caller's goroutine. It is
// used by one-shot commands that do not start the loop.
func (a *Agent) Drain(ctx context.Context) (models.SyncBatchResult, bool, error) {
	select {
	case src := <-a.triggers:
		a.logger.Debug(ctx, "running queued sync", "trigger", string(src))
		res, err := a.sync.Run(ctx)
		return res, true, err
	default:
		return models.SyncBatchResult{}, false, nil
	}
}

// Online reports the result of the last connectivity probe.
func (a *Agent) Online() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.online
}

// Run starts the trigger sources and the sync loop and blocks until ctx is
// cancelled and all of them have returned.
func (a *Agent) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sync.Loop(ctx, a.triggers)
	}()

	if a.onlineCheckInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.watchConnectivity(ctx)
		}()
	}

	if a.syncInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.schedule(ctx)
		}()
	}

	wg.Wait()
}

func (a *Agent) watchConnectivity(ctx context.Context) {
	a.probe(ctx)

	ticker := time.NewTicker(a.onlineCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// probe pings the collector once and emits a connectivity trigger on an
// offline to online transition.
func (a *Agent) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.client.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	online := err == nil

	a.mu.Lock()
	changed := a.online != online
	a.online = online
	a.mu.Unlock()

	if !changed {
		return
	}

	if online {
		a.logger.Info(ctx, "collector reachable")
		a.Trigger(services.TriggerConnectivity)
	} else {
		a.logger.Warn(ctx, "collector unreachable", "error", err)
	}
}

func (a *Agent) schedule(ctx context.Context) {
	ticker := time.NewTicker(a.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Trigger(services.TriggerScheduled)
		case <-ctx.Done():
			return
		}
	}
}
