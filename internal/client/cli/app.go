package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/snapnote/internal/client/agent"
	"github.com/dmitrijs2005/snapnote/internal/client/client"
	"github.com/dmitrijs2005/snapnote/internal/client/config"
	"github.com/dmitrijs2005/snapnote/internal/client/repositories/notes"
	"github.com/dmitrijs2005/snapnote/internal/client/services"
	"github.com/dmitrijs2005/snapnote/internal/logging"
)

// App wires the local queue, the collector client and the services used by
// the commands.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	notes services.NoteService
	sync  services.SyncService
	agent *agent.Agent
}

// NewApp opens (and migrates) the local database and builds the services.
// The caller must Close the App.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	hc, err := client.NewHTTPClient(cfg.ServerURL, &http.Client{})
	if err != nil {
		return nil, err
	}

	db, err := client.OpenDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error opening local database: %w", err)
	}

	repo := notes.NewSQLiteRepository(db)
	syncService := services.NewSyncService(hc, repo, logger, cfg.UploadTimeout)
	ag := agent.New(hc, syncService, logger, cfg.OnlineCheckInterval, cfg.BackgroundSyncInterval)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		notes:  services.NewNoteService(repo, func() { ag.Trigger(services.TriggerCapture) }),
		sync:   syncService,
		agent:  ag,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
