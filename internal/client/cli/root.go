package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/buildinfo"
	"github.com/dmitrijs2005/snapnote/internal/client/config"
	"github.com/dmitrijs2005/snapnote/internal/logging"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile    string
	ServerURL     string
	Database      string
	UploadTimeout time.Duration
	Verbose       bool
}

// NewRootCommand creates the root command of the device client.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "snapnote",
		Short:         "SnapNote - offline-first photo notes",
		Long:          "Capture photo notes offline and deliver them to the collector once it is reachable.",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to config file (.json, .yaml)")
	cmd.PersistentFlags().StringVarP(&opts.ServerURL, "server", "s", "", "collector base URL")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the local SQLite queue")
	cmd.PersistentFlags().DurationVar(&opts.UploadTimeout, "upload-timeout", 0, "timeout of a single note upload")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// loadConfig applies the flags explicitly given on the command line on top
// of defaults, config file and environment.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.ConfigFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = o.ServerURL
	}
	if flags.Changed("db") {
		cfg.DatabasePath = o.Database
	}
	if flags.Changed("upload-timeout") {
		cfg.UploadTimeout = o.UploadTimeout
	}
	return cfg, nil
}

func (o *RootOptions) logger(cmd *cobra.Command) logging.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return logging.NewTextLogger(cmd.ErrOrStderr(), level)
}

// withApp builds the App for one command invocation and closes it afterwards.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := NewApp(ctx, cfg, o.logger(cmd))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error closing database:", cerr)
		}
	}()

	return fn(ctx, a)
}
