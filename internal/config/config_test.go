package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"MONGO_URI", "REDIS_ADDR", "PORT", "RECALC_BATCH_SIZE", "FORM_CACHE_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 200, cfg.Engine.RecalcBatchSize)
	assert.Equal(t, 10*time.Minute, cfg.FormCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis://cache:6380")
	t.Setenv("RECALC_BATCH_SIZE", "50")
	t.Setenv("SUBMIT_LOCK_TTL", "3s")
	t.Setenv("ADMIN_ORGANIZATION_ID", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 50, cfg.Engine.RecalcBatchSize)
	assert.Equal(t, 3*time.Second, cfg.SubmitLockTTL)
	assert.Equal(t, int64(42), cfg.AdminOrganizationID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("RECALC_BATCH_SIZE", "lots")
	t.Setenv("FORM_CACHE_TTL", "-1s")

	cfg := Load()
	assert.Equal(t, 200, cfg.Engine.RecalcBatchSize)
	assert.Equal(t, 10*time.Minute, cfg.FormCacheTTL)
}
