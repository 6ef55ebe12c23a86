// Package config handles configuration for the collector, including
// defaults, a JSON or YAML file overlay, environment variables and
// command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the SnapNote collector.
//
// Fields:
//   - ListenAddr: bind address of the HTTP API.
//   - VAPIDPublicKey / VAPIDPrivateKey: Web Push application server keys.
//     Without both, sync notifications are refused.
//   - VAPIDSubject: contact URI sent with push messages (mailto: or https:).
//   - SubscriptionsFile: JSON file holding the push subscriptions.
//   - DatabaseDSN: optional PostgreSQL DSN (pgx) of the receipt ledger; empty
//     keeps receipts in memory.
//   - StaticDir: optional directory served for every non-API path.
//   - MaxUploadBytes: upper bound of a note upload body.
//   - PushConcurrency / PushTimeout / PushTTL: notification fan-out settings.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
type Config struct {
	ListenAddr        string
	VAPIDPublicKey    string
	VAPIDPrivateKey   string
	VAPIDSubject      string
	SubscriptionsFile string
	DatabaseDSN       string
	StaticDir         string
	MaxUploadBytes    int64
	PushConcurrency   int
	PushTimeout       time.Duration
	PushTTL           time.Duration
	ShutdownTimeout   time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":3000"
	c.VAPIDSubject = "mailto:test@example.com"
	c.SubscriptionsFile = "./subscriptions.json"
	c.MaxUploadBytes = 10 << 20
	c.PushConcurrency = 8
	c.PushTimeout = 10 * time.Second
	c.PushTTL = 24 * time.Hour
	c.ShutdownTimeout = 5 * time.Second
}

// HasVAPIDKeys reports whether push notifications can be signed.
func (c *Config) HasVAPIDKeys() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags. It panics on an unreadable config file or malformed values.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg, args)
	return cfg
}
