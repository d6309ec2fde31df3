package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_BASE_URL", "DOWNLOAD_DELAY", "MAX_PAYLOAD_MB", "CSRF_KEY", "SESSION_KEY"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
	assert.Equal(t, time.Second, cfg.DownloadDelay)
	assert.EqualValues(t, 80, cfg.MaxPayloadMB)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.Len(t, cfg.SessionKey, 32)
}

func TestLoadConfig_Overrides(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("PORT", "not-a-port")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("DOWNLOAD_DELAY", "250ms")
	t.Setenv("MAX_PAYLOAD_MB", "-4")
	t.Setenv("SESSION_KEY", key)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8585", cfg.Port)
	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.DownloadDelay)
	assert.EqualValues(t, 80, cfg.MaxPayloadMB)
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), cfg.SessionKey)
}
