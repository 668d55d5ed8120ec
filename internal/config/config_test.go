package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "ops:requests", cfg.Redis.Stream)
	assert.Equal(t, "graphichelper-originals", cfg.Storage.BucketOriginals)
	assert.Equal(t, "graphichelper-processed", cfg.Storage.BucketProcessed)
	assert.Equal(t, time.Hour, cfg.Storage.TempMaxAge)
	assert.Equal(t, 15*time.Minute, cfg.Security.JWTAccessTTL)
	assert.Equal(t, 12*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.Security.RemoteCallBudget)
}
