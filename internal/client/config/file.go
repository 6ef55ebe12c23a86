package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/snapnote/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is a DTO used exclusively for file unmarshalling. Pointer and
// zero-value fields left out of the file keep the earlier value.
type fileConfig struct {
	ServerURL              string          `json:"server_url" yaml:"server_url"`
	DatabasePath           string          `json:"database_path" yaml:"database_path"`
	OnlineCheckInterval    *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	BackgroundSyncInterval *timex.Duration `json:"background_sync_interval" yaml:"background_sync_interval"`
	UploadTimeout          *timex.Duration `json:"upload_timeout" yaml:"upload_timeout"`
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.BackgroundSyncInterval != nil {
		cfg.BackgroundSyncInterval = fc.BackgroundSyncInterval.Duration
	}
	if fc.UploadTimeout != nil {
		cfg.UploadTimeout = fc.UploadTimeout.Duration
	}
	return nil
}
