// Package server wires the collector: configuration, the receipt ledger,
// the subscription registry, the notification dispatcher and the HTTP API.
// It handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/dmitrijs2005/snapnote/internal/server/collector"
	"github.com/dmitrijs2005/snapnote/internal/server/config"
	"github.com/dmitrijs2005/snapnote/internal/server/httpapi"
	"github.com/dmitrijs2005/snapnote/internal/server/notify"
	"github.com/dmitrijs2005/snapnote/internal/server/receipts"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

// NewApp builds the collector from c. The subscription file must be
// readable (or absent); a configured database must be reachable.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	registry, err := subscriptions.Load(c.SubscriptionsFile)
	if err != nil {
		return nil, fmt.Errorf("subscriptions init error: %w", err)
	}

	var (
		db    *sql.DB
		store receipts.Repository = receipts.NewMemoryRepository()
	)
	if c.DatabaseDSN != "" {
		db, err = receipts.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		store = receipts.NewPostgresRepository(db)
	}

	var pusher notify.Pusher
	if c.HasVAPIDKeys() {
		pusher, err = notify.NewWebPusher(notify.WebPushOptions{
			PublicKey:  c.VAPIDPublicKey,
			PrivateKey: c.VAPIDPrivateKey,
			Subject:    c.VAPIDSubject,
			TTL:        c.PushTTL,
		})
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn(ctx, "missing VAPID keys, sync notifications are disabled")
	}

	dispatcher := notify.NewDispatcher(registry, pusher, logger, c.PushConcurrency, c.PushTimeout)
	col := collector.NewService(store, logger)

	api := httpapi.NewServer(httpapi.Options{
		Addr:            c.ListenAddr,
		PublicKey:       c.VAPIDPublicKey,
		MaxUploadBytes:  c.MaxUploadBytes,
		StaticDir:       c.StaticDir,
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, col, registry, dispatcher)

	return &App{config: c, logger: logger, db: db, api: api}, nil
}

// NewDefaultLogger is the collector's JSON logger on stdout.
func NewDefaultLogger() logging.Logger {
	return logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.api.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then releases the
// database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.ListenAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}
	app.logger.Info(context.Background(), "App stopped")
}
