package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

//go:generate go run ../tools/schema-generator/

// ServerConfig points the client at the Orbit authority.
type ServerConfig struct {
	// BaseURL is the WebSocket endpoint base, e.g. "wss://api.example.com".
	// The session and leads channel paths are appended to it.
	BaseURL string `yaml:"base_url" jsonschema:"description=WebSocket base URL of the Orbit server" jsonschema_extras:"x-priority=1,x-important=true"`
	// HTTPURL is the REST endpoint base used for lead-list hydration.
	// Derived from BaseURL (ws->http, wss->https) when empty.
	HTTPURL string `yaml:"http_url,omitempty" jsonschema:"description=HTTP base URL for REST requests (derived from base_url when empty)"`
	// SessionID selects the workspace session to join.
	SessionID string `yaml:"session_id,omitempty" jsonschema:"description=Workspace session identifier (default: a generated id)"`
}

// AuthConfig supplies the bearer credential.
type AuthConfig struct {
	Token     string `yaml:"token,omitempty" jsonschema:"description=Bearer token passed as a query parameter when opening channels"`
	TokenFile string `yaml:"token_file,omitempty" jsonschema:"description=Path to a file containing the bearer token; watched for rotation"`
}

// SyncConfig tunes the channel and coordinator behavior.
type SyncConfig struct {
	// ReconnectDelaySeconds is the fixed delay between a channel close
	// and the next connection attempt.
	ReconnectDelaySeconds int `yaml:"reconnect_delay_seconds,omitempty" jsonschema:"description=Fixed reconnect delay in seconds (default: 2)"`
	// PingIntervalSeconds is the leads channel keep-alive interval.
	// Zero disables the keep-alive.
	PingIntervalSeconds int `yaml:"ping_interval_seconds,omitempty" jsonschema:"description=Leads channel ping interval in seconds (default: 25, 0 disables)"`
	// PendingPushTimeoutSeconds is how long a newly-arrived lead holds
	// the alert slot before it times out into the main list.
	PendingPushTimeoutSeconds int `yaml:"pending_push_timeout_seconds,omitempty" jsonschema:"description=Seconds a new-lead alert stays pending before auto-clearing (default: 8)"`
}

// Config is the root of orbit.yml.
type Config struct {
	Version string       `yaml:"version,omitempty" jsonschema:"description=Config schema version"`
	Server  ServerConfig `yaml:"server" jsonschema:"description=Orbit server endpoints"`
	Auth    AuthConfig   `yaml:"auth,omitempty" jsonschema:"description=Bearer credential supply"`
	Sync    SyncConfig   `yaml:"sync,omitempty" jsonschema:"description=Channel and coordinator tuning"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" jsonschema:"-"`
}

// Defaults used when the corresponding orbit.yml keys are absent.
const (
	DefaultReconnectDelaySeconds     = 2
	DefaultPingIntervalSeconds       = 25
	DefaultPendingPushTimeoutSeconds = 8
)

// ApplyDefaults fills zero-valued tuning knobs with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Sync.ReconnectDelaySeconds == 0 {
		c.Sync.ReconnectDelaySeconds = DefaultReconnectDelaySeconds
	}
	if c.Sync.PingIntervalSeconds == 0 {
		c.Sync.PingIntervalSeconds = DefaultPingIntervalSeconds
	}
	if c.Sync.PendingPushTimeoutSeconds == 0 {
		c.Sync.PendingPushTimeoutSeconds = DefaultPendingPushTimeoutSeconds
	}
}

// UnmarshalExtension decodes a specific extension's configuration from
// the loaded orbit.yml into the provided target struct. The target must
// be a pointer. This gives tools a type-safe way to access their custom
// top-level sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
