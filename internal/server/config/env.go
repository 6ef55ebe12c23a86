package config

import (
	"os"

	"github.com/dmitrijs2005/snapnote/internal/flagx"
)

// Environment variables understood by the collector.
const (
	EnvPort              = "PORT"
	EnvVAPIDPublicKey    = "VAPID_PUBLIC_KEY"
	EnvVAPIDPrivateKey   = "VAPID_PRIVATE_KEY"
	EnvVAPIDSubject      = "VAPID_SUBJECT"
	EnvSubscriptionsFile = "SUBSCRIPTIONS_FILE"
	EnvDatabaseDSN       = "DATABASE_DSN"
	EnvStaticDir         = "STATIC_DIR"
	EnvPushTimeout       = "PUSH_TIMEOUT"
	EnvPushConcurrency   = "PUSH_CONCURRENCY"
)

// parseEnv overlays Config with the environment. PORT only carries a port
// number and binds on all interfaces.
func parseEnv(config *Config) error {
	if port, ok := os.LookupEnv(EnvPort); ok && port != "" {
		config.ListenAddr = ":" + port
	}

	flagx.EnvString(&config.VAPIDPublicKey, EnvVAPIDPublicKey)
	flagx.EnvString(&config.VAPIDPrivateKey, EnvVAPIDPrivateKey)
	flagx.EnvString(&config.VAPIDSubject, EnvVAPIDSubject)
	flagx.EnvString(&config.SubscriptionsFile, EnvSubscriptionsFile)
	flagx.EnvString(&config.DatabaseDSN, EnvDatabaseDSN)
	flagx.EnvString(&config.StaticDir, EnvStaticDir)

	if err := flagx.EnvDuration(&config.PushTimeout, EnvPushTimeout); err != nil {
		return err
	}
	return flagx.EnvInt(&config.PushConcurrency, EnvPushConcurrency)
}
