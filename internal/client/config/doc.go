// Package config loads runtime configuration for the SnapNote device agent.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file given with --config (JSON, or YAML for .yaml/.yml).
//  3. Environment variables SNAPNOTE_SERVER_URL and SNAPNOTE_DB.
//  4. Command-line flags, applied by the CLI on top of the result.
//
// # File schema
//
// Intervals use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "database_path": "snapnote.db",
//	  "online_check_interval": "3s",
//	  "background_sync_interval": "1m",
//	  "upload_timeout": "30s"
//	}
package config
