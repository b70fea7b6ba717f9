// Package config loads and watches the host bridge configuration.
//
// Config is an optional YAML or JSON file; positional CLI arguments
// ([port] [mode]) override the transfer section. YAML is coerced to JSON so a
// single strict decoder (DisallowUnknownFields) serves both formats.
package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Device        DeviceConfig        `json:"device,omitempty"`
	Transfer      TransferConfig      `json:"transfer,omitempty"`
	Notifications NotificationsConfig `json:"notifications,omitempty"`
	Logging       LoggingConfig       `json:"logging,omitempty"`

	// Storage controls the optional transfer history persistence.
	// If omitted, history is disabled.
	Storage *StorageConfig `json:"storage,omitempty"`
	History *HistoryConfig `json:"history,omitempty"`
}

type DeviceConfig struct {
	// Name overrides the device identity announced to peers.
	// Default: the OS hostname.
	Name string `json:"name,omitempty"`
}

// TransferConfig is handed to the external core at construction time.
type TransferConfig struct {
	Port int `json:"port,omitempty"`

	// Mode is the transport token: "tls" (default), "quic", "plain"/"plaintcp".
	// Unknown tokens silently fall back to the default secure transport.
	Mode string `json:"mode,omitempty"`

	// StoragePath is where accepted files land.
	// Default: the OS downloads directory, falling back to ./downloads.
	StoragePath string `json:"storage_path,omitempty"`

	DevMode bool `json:"dev_mode,omitempty"`
}

// NotificationsConfig controls the desktop notification surface.
//
// All durations are Go duration strings (e.g. "5s", "30s").
type NotificationsConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"` // nil means enabled
	AppName  string `json:"app_name,omitempty"`
	Identity string `json:"identity,omitempty"` // application identity registered with the shell
	Icon     string `json:"icon,omitempty"`

	RequestTimeout string `json:"request_timeout,omitempty"` // actionable prompts; default "30s"
	InfoTimeout    string `json:"info_timeout,omitempty"`    // transient info; default "5s"
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console *bool             `json:"console,omitempty"` // nil means enabled
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig controls the optional persistence layer.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// HistoryConfig controls retention of recorded transfers.
type HistoryConfig struct {
	// Retention is a Go duration string; records older than this are pruned.
	// Default "720h" (30 days).
	Retention string `json:"retention,omitempty"`

	// PruneSchedule is a standard 5-field cron spec. Default "0 * * * *".
	PruneSchedule string `json:"prune_schedule,omitempty"`
}

const (
	DefaultPort           = 8080
	DefaultAppName        = "DropGate"
	DefaultIdentity       = "dev.dropgate.Host"
	DefaultRequestTimeout = 30 * time.Second
	DefaultInfoTimeout    = 5 * time.Second
	DefaultRetention      = 720 * time.Hour
	DefaultPruneSchedule  = "0 * * * *"
)

// Default returns a config with every startup-relevant default filled in.
// Running without a config file is the common case, so the result must be
// complete: the notification identity in particular gates shell registration.
func Default() *Config {
	c := &Config{
		Transfer: TransferConfig{Port: DefaultPort},
		Logging:  LoggingConfig{Level: "info"},
	}
	c.normalize()
	return c
}

func (c *Config) normalize() {
	if c.Transfer.Port <= 0 || c.Transfer.Port > 65535 {
		c.Transfer.Port = DefaultPort
	}
	if strings.TrimSpace(c.Notifications.AppName) == "" {
		c.Notifications.AppName = DefaultAppName
	}
	if strings.TrimSpace(c.Notifications.Identity) == "" {
		c.Notifications.Identity = DefaultIdentity
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
}

// NotificationsEnabled resolves the tri-state enable flag.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// ConsoleLogging resolves the tri-state console flag.
func (c *Config) ConsoleLogging() bool {
	return c.Logging.Console == nil || *c.Logging.Console
}

// ParseDurationOrDefault parses a Go duration string field, treating an empty
// value as the default. The path is only used for error context.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", path, raw)
	}
	return d, nil
}
