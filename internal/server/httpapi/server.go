// Package httpapi exposes the collector over HTTP: note uploads, push
// subscription management and sync notifications.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/common"
	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/dmitrijs2005/snapnote/internal/server/collector"
	"github.com/dmitrijs2005/snapnote/internal/server/notify"
	"github.com/dmitrijs2005/snapnote/internal/server/subscriptions"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
)

const (
	maxJSONBytes           = 1 << 20
	readHeaderTimeout      = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultMaxUploadBytes  = 10 << 20
)

// NoteAcceptor records note uploads.
type NoteAcceptor interface {
	Accept(ctx context.Context, u collector.Upload) (duplicate bool, err error)
}

// SyncNotifier fans a sync notification out to the subscribers.
type SyncNotifier interface {
	Dispatch(ctx context.Context, count int) (notify.Report, error)
}

// Options are the HTTP level settings of the API.
type Options struct {
	Addr            string
	PublicKey       string
	MaxUploadBytes  int64
	StaticDir       string
	ShutdownTimeout time.Duration
}

type Server struct {
	opts          Options
	logger        logging.Logger
	notes         NoteAcceptor
	subscriptions subscriptions.Registry
	notifier      SyncNotifier
	now           func() time.Time
}

func NewServer(opts Options, logger logging.Logger, notes NoteAcceptor, registry subscriptions.Registry, notifier SyncNotifier) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Server{
		opts:          opts,
		logger:        logger.With("module", "httpapi"),
		notes:         notes,
		subscriptions: registry,
		notifier:      notifier,
		now:           time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.Methods(http.MethodGet).Path(common.PathPing).HandlerFunc(s.ping)
	r.Methods(http.MethodGet).Path(common.PathPublicKey).HandlerFunc(s.publicKey)
	r.Methods(http.MethodPost).Path(common.PathSubscribe).HandlerFunc(s.subscribe)
	r.Methods(http.MethodPost).Path(common.PathNotes).HandlerFunc(s.uploadNote)
	r.Methods(http.MethodPost).Path(common.PathSyncCompleted).HandlerFunc(s.syncCompleted)

	if s.opts.StaticDir != "" {
		r.Methods(http.MethodGet, http.MethodHead).PathPrefix("/").Handler(newStaticHandler(s.opts.StaticDir))
	}
	r.NotFoundHandler = s.accessLog(http.HandlerFunc(notFound))

	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info(r.Context(), "handled",
			"method", r.Method,
			"url", r.URL.String(),
			"status", m.Code,
			"bytes", m.Written,
			"duration", m.Duration)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.logger.Info(shutdownCtx, "shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
