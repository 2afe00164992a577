package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8000", cfg.ServerPort)
	require.Equal(t, "./share", cfg.ShareRoot)
	require.True(t, cfg.ReadOnly)
	require.False(t, cfg.AllowOverwrite)
	require.Equal(t, int64(16*1024*1024), cfg.MaxChunkSize)
	require.Equal(t, 24*time.Hour, cfg.UploadExpiry)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("READ_ONLY", "false")
	t.Setenv("MAX_CHUNK_SIZE", "1048576")
	t.Setenv("UPLOAD_EXPIRY", "1h")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9001", cfg.ServerPort)
	require.False(t, cfg.ReadOnly)
	require.Equal(t, int64(1<<20), cfg.MaxChunkSize)
	require.Equal(t, time.Hour, cfg.UploadExpiry)
	require.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			ServerPort:     "8000",
			ShareRoot:      "./share",
			StateDir:       "./state",
			MaxChunkSize:   1,
			UploadExpiry:   time.Hour,
			RequestTimeout: time.Second,
		}
	}

	require.NoError(t, base().Validate())

	broken := base()
	broken.ServerPort = ""
	require.Error(t, broken.Validate())

	broken = base()
	broken.MaxChunkSize = 0
	require.Error(t, broken.Validate())

	broken = base()
	broken.UploadExpiry = 0
	require.Error(t, broken.Validate())
}
