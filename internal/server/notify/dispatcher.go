// Package notify fans sync notifications out to every registered push
// subscription and prunes the ones that failed.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
	"golang.org/x/sync/errgroup"
)

// Pusher delivers one payload to one subscription. A non-nil error means
// the subscription did not accept the message.
type Pusher interface {
	Push(ctx context.Context, sub subscriptions.Subscription, payload []byte) error
}

// Report summarises one dispatch.
type Report struct {
	Attempted int
	Delivered int
	Pruned    int
}

// Dispatcher composes and delivers sync notifications.
type Dispatcher struct {
	registry    subscriptions.Registry
	pusher      Pusher
	logger      logging.Logger
	concurrency int
	timeout     time.Duration
}

// NewDispatcher creates a Dispatcher. A nil pusher means push credentials
// are not configured and every Dispatch fails with ErrMissingCredentials.
// concurrency bounds parallel deliveries (<= 0 means unbounded) and timeout
// bounds each one (0 means no bound).
func NewDispatcher(registry subscriptions.Registry, pusher Pusher, logger logging.Logger, concurrency int, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		pusher:      pusher,
		logger:      logger.With("module", "notify"),
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// Dispatch notifies every subscription that count notes were synced.
// Deliveries run concurrently and independently; once all have finished the
// failed endpoints are removed in a single registry update. Individual
// delivery failures do not fail the call.
func (d *Dispatcher) Dispatch(ctx context.Context, count int) (Report, error) {
	var rep Report

	if d.pusher == nil {
		return rep, common.ErrMissingCredentials
	}

	payload, err := NewSyncMessage(count).Encode()
	if err != nil {
		return rep, fmt.Errorf("encode message: %w", err)
	}

	subs, err := d.registry.ListAll(ctx)
	if err != nil {
		return rep, fmt.Errorf("list subscriptions: %w", err)
	}
	rep.Attempted = len(subs)
	if len(subs) == 0 {
		return rep, nil
	}

	results := make([]error, len(subs))

	var g errgroup.Group
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, sub := range subs {
		g.Go(func() error {
			results[i] = d.deliver(ctx, sub, payload)
			return nil
		})
	}
	_ = g.Wait()

	// a cancelled request says nothing about the endpoints
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	var failed []string
	for i, err := range results {
		if err == nil {
			rep.Delivered++
			continue
		}
		d.logger.Warn(ctx, "push delivery failed", "endpoint", subs[i].Endpoint, "error", err)
		failed = append(failed, subs[i].Endpoint)
	}

	if len(failed) > 0 {
		n, err := d.registry.RemoveAll(ctx, failed)
		if err != nil {
			return rep, fmt.Errorf("prune subscriptions: %w", err)
		}
		rep.Pruned = n
	}

	d.logger.Info(ctx, "sync notification dispatched", "count", count,
		"attempted", rep.Attempted, "delivered", rep.Delivered, "pruned", rep.Pruned)
	return rep, nil
}

func (d *Dispatcher) deliver(ctx context.Context, sub subscriptions.Subscription, payload []byte) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.pusher.Push(ctx, sub, payload); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDeliveryFailure, err)
	}
	return nil
}
