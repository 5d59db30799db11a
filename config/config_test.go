package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, 12, cfg.RecentPageSize)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://taco-cloud.com"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("RECENT_PAGE_SIZE", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test, ,http://b.test ")

	cfg := Load()
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, 12, cfg.RecentPageSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "idols", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/idols?sslmode=disable", cfg.PostgresDSN())
}
