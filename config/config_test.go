package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiie/orbit/errors"
)

const sampleConfig = `
version: "1"
server:
  base_url: wss://orbit.example.com
  session_id: field-demo
auth:
  token_file: /tmp/orbit-token
sync:
  reconnect_delay_seconds: 5
logging:
  level: debug
`

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "wss://orbit.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "field-demo", cfg.Server.SessionID)
	assert.Equal(t, "/tmp/orbit-token", cfg.Auth.TokenFile)
	assert.Equal(t, 5, cfg.Sync.ReconnectDelaySeconds)

	// Defaults fill the untouched knobs.
	assert.Equal(t, DefaultPingIntervalSeconds, cfg.Sync.PingIntervalSeconds)
	assert.Equal(t, DefaultPendingPushTimeoutSeconds, cfg.Sync.PendingPushTimeoutSeconds)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("ORBIT_TEST_TOKEN", "secret-from-env")

	cfg, err := LoadFromBytes([]byte("server:\n  base_url: wss://x\nauth:\n  token: ${ORBIT_TEST_TOKEN}\n"))
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Auth.Token)
}

func TestUnmarshalExtension(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(sampleConfig))
	require.NoError(t, err)

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)

	// Missing extension keys leave the target zero-valued.
	var missing struct {
		Anything string `yaml:"anything"`
	}
	require.NoError(t, cfg.UnmarshalExtension("does-not-exist", &missing))
	assert.Equal(t, "", missing.Anything)
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	path := filepath.Join(root, "orbit.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))

	// Found by walking up from a nested directory.
	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindConfigFileMissing(t *testing.T) {
	_, err := FindConfigFile(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing base_url", "version: \"1\"\nserver:\n  session_id: x\n"},
		{"both token and token_file", "server:\n  base_url: wss://x\nauth:\n  token: a\n  token_file: /b\n"},
		{"negative reconnect delay", "server:\n  base_url: wss://x\nsync:\n  reconnect_delay_seconds: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromBytes([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}
