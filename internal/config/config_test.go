package config_test

import (
	"testing"
	"time"

	"botdesk/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 5*time.Minute, cfg.Sync.Freshness)
	require.Equal(t, 50*time.Millisecond, cfg.Sync.Debounce)
	require.False(t, cfg.Sync.Live)
	require.Equal(t, "botdesk", cfg.Remote.Namespace)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOTDESK_SERVER_PORT", "9090")
	t.Setenv("BOTDESK_SYNC_FRESHNESS", "2m")
	t.Setenv("BOTDESK_SYNC_LIVE", "true")
	t.Setenv("BOTDESK_REMOTE_PROJECT_ID", "demo-project")
	t.Setenv("BOTDESK_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 2*time.Minute, cfg.Sync.Freshness)
	require.True(t, cfg.Sync.Live)
	require.Equal(t, "demo-project", cfg.Remote.ProjectID)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("BOTDESK_SERVER_PORT", "not-a-port")

	_, err := config.Load()
	require.Error(t, err)
}
