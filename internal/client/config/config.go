package config

import (
	"time"

	"github.com/dmitrijs2005/snapnote/internal/flagx"
)

const (
	EnvServerURL = "SNAPNOTE_SERVER_URL"
	EnvDatabase  = "SNAPNOTE_DB"
)

// Config holds runtime settings for the device agent.
//
// Fields:
//   - ServerURL: base URL of the collector, e.g. http://127.0.0.1:3000.
//   - DatabasePath: SQLite file holding the note queue.
//   - OnlineCheckInterval: how often the agent probes collector reachability.
//   - BackgroundSyncInterval: period of scheduled sync runs; 0 disables them.
//   - UploadTimeout: bound on a single note transfer.
type Config struct {
	ServerURL              string
	DatabasePath           string
	OnlineCheckInterval    time.Duration
	BackgroundSyncInterval time.Duration
	UploadTimeout          time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.DatabasePath = "snapnote.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.BackgroundSyncInterval = time.Minute
	c.UploadTimeout = 30 * time.Second
}

// LoadConfig builds a Config from defaults, the optional file at path and
// the environment. Later sources take precedence over earlier ones.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	flagx.EnvString(&cfg.ServerURL, EnvServerURL)
	flagx.EnvString(&cfg.DatabasePath, EnvDatabase)
}
