package config

import (
	"flag"

	"github.com/dmitrijs2005/snapnote/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":3000")
//	-d string     PostgreSQL DSN of the receipt ledger
//	-f string     subscriptions file
//	-k string     VAPID public key
//	-p string     VAPID private key
//	-m string     VAPID subject (mailto:)
//	-w string     static directory
//	-n int        push fan-out concurrency
//	-t duration   timeout of one push delivery (e.g., "10s")
//
// The args are first filtered to the flags recognized here using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-f", "-k", "-p", "-m", "-w", "-n", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SubscriptionsFile, "f", config.SubscriptionsFile, "subscriptions file")
	fs.StringVar(&config.VAPIDPublicKey, "k", config.VAPIDPublicKey, "VAPID public key")
	fs.StringVar(&config.VAPIDPrivateKey, "p", config.VAPIDPrivateKey, "VAPID private key")
	fs.StringVar(&config.VAPIDSubject, "m", config.VAPIDSubject, "VAPID subject")
	fs.StringVar(&config.StaticDir, "w", config.StaticDir, "static directory")
	fs.IntVar(&config.PushConcurrency, "n", config.PushConcurrency, "push concurrency")
	fs.DurationVar(&config.PushTimeout, "t", config.PushTimeout, "push delivery timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
