package config

import (
	"gopkg.in/yaml.v3"

	"github.com/sophiie/orbit/errors"
	"github.com/sophiie/orbit/schema"
)

// Validate checks the configuration against the embedded JSON Schema
// plus the semantic rules the schema cannot express.
func (c *Config) Validate() error {
	validator, err := schema.NewValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "failed to load schema validator")
	}

	// Round-trip through YAML so property names match the yaml-tagged
	// schema rather than the Go field names.
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "failed to marshal config")
	}
	var generic map[string]interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "failed to re-parse config")
	}

	if err := validator.Validate(generic); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "configuration is invalid")
	}

	if c.Server.BaseURL == "" {
		return errors.ConfigInvalid("server.base_url is required")
	}
	if c.Auth.Token != "" && c.Auth.TokenFile != "" {
		return errors.ConfigInvalid("auth.token and auth.token_file are mutually exclusive")
	}
	if c.Sync.ReconnectDelaySeconds < 0 {
		return errors.ConfigInvalid("sync.reconnect_delay_seconds must not be negative")
	}

	return nil
}
