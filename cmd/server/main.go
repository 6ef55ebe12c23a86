package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/snapnote/internal/buildinfo"
	"github.com/dmitrijs2005/snapnote/internal/flagx"
	"github.com/dmitrijs2005/snapnote/internal/server"
	"github.com/dmitrijs2005/snapnote/internal/server/config"
	"github.com/dmitrijs2005/snapnote/internal/server/notify"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	// -genkeys prints a fresh VAPID key pair for the environment and exits
	if len(flagx.FilterArgs(os.Args[1:], []string{"-genkeys", "--genkeys"})) > 0 {
		pub, priv, err := notify.GenerateKeys()
		if err != nil {
			fmt.Fprintln(os.Stderr, "key generation failed:", err)
			os.Exit(1)
		}
		fmt.Printf("%s=%s\n%s=%s\n", config.EnvVAPIDPublicKey, pub, config.EnvVAPIDPrivateKey, priv)
		return
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := server.NewDefaultLogger()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
