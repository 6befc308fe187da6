package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "data/avrctl.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.CommandTimeoutSeconds)
	assert.Equal(t, 2000, cfg.SocketReadTimeoutMs)
	assert.Equal(t, "80,8080,23", cfg.DiscoveryPorts)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, "admin", cfg.AdminUser)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("COMMAND_TIMEOUT_SECONDS", "2")
	t.Setenv("SERVER_ADDRESS", ":9000")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.CommandTimeoutSeconds)
	assert.Equal(t, ":9000", cfg.ServerAddress)
}
