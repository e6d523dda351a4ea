package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
endpoint:
  url: https://script.example.com/exec
  timeout: 5s
refresh:
  schedule: "@every 1m"
kiosk:
  pause_reasons:
    - label: Lunch
      type: PAUSE_BREAK
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "https://script.example.com/exec", cfg.Endpoint.URL)
	assert.Equal(t, 5*time.Second, cfg.Endpoint.Timeout)
	assert.Equal(t, "@every 1m", cfg.Refresh.Schedule)
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, 500, cfg.Kiosk.LogSize)
	assert.Equal(t, path, cfg.ConfigPath)
	require.Len(t, cfg.Kiosk.PauseReasons, 1)
	assert.Equal(t, "PAUSE_BREAK", cfg.Kiosk.PauseType("Lunch"))
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Endpoint.URL = "https://script.example.com/exec"
	cfg.ConfigPath = "ignored"

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Endpoint, loaded.Endpoint)
	assert.Equal(t, cfg.Kiosk.PauseReasons, loaded.Kiosk.PauseReasons)
	assert.Equal(t, path, loaded.ConfigPath)
}

func TestPauseType(t *testing.T) {
	k := Default().Kiosk

	tests := []struct {
		label string
		want  string
	}{
		{"พักเบรก", "PAUSE_BREAK"},
		{"เครื่องจักรเสีย", "PAUSE_MACHINE"},
		{"something else", "PAUSE"},
		{"", "PAUSE"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, k.PauseType(tt.label))
		})
	}
}
