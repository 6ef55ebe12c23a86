package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/snapnote/internal/flagx"
	"github.com/dmitrijs2005/snapnote/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig defines a configuration structure tailored for file
// unmarshalling. Durations use timex.Duration, so both "10s" and integer
// nanoseconds are accepted. Keys missing from the file keep their earlier
// value.
type FileConfig struct {
	ListenAddr        *string         `json:"listen_addr" yaml:"listen_addr"`
	VAPIDPublicKey    *string         `json:"vapid_public_key" yaml:"vapid_public_key"`
	VAPIDPrivateKey   *string         `json:"vapid_private_key" yaml:"vapid_private_key"`
	VAPIDSubject      *string         `json:"vapid_subject" yaml:"vapid_subject"`
	SubscriptionsFile *string         `json:"subscriptions_file" yaml:"subscriptions_file"`
	DatabaseDSN       *string         `json:"database_dsn" yaml:"database_dsn"`
	StaticDir         *string         `json:"static_dir" yaml:"static_dir"`
	MaxUploadBytes    *int64          `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	PushConcurrency   *int            `json:"push_concurrency" yaml:"push_concurrency"`
	PushTimeout       *timex.Duration `json:"push_timeout" yaml:"push_timeout"`
	PushTTL           *timex.Duration `json:"push_ttl" yaml:"push_ttl"`
	ShutdownTimeout   *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseFile loads configuration values from the file named by -c or
// -config. Files ending in .yaml or .yml are read as YAML, anything else as
// JSON. If the file cannot be read or parsed, the function panics.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.VAPIDPublicKey, c.VAPIDPublicKey)
	setString(&config.VAPIDPrivateKey, c.VAPIDPrivateKey)
	setString(&config.VAPIDSubject, c.VAPIDSubject)
	setString(&config.SubscriptionsFile, c.SubscriptionsFile)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StaticDir, c.StaticDir)

	if c.MaxUploadBytes != nil {
		config.MaxUploadBytes = *c.MaxUploadBytes
	}
	if c.PushConcurrency != nil {
		config.PushConcurrency = *c.PushConcurrency
	}
	if c.PushTimeout != nil {
		config.PushTimeout = c.PushTimeout.Duration
	}
	if c.PushTTL != nil {
		config.PushTTL = c.PushTTL.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
