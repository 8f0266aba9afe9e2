package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SESSION_TTL", "")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "sessionid", cfg.SessionCookie)
	assert.Equal(t, "basket", cfg.SessionBasketKey)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.MigrateOnStart)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("WORKER_COUNT", "-3")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 4, cfg.WorkerCount)
}
