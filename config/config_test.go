package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnistock/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, uint64(3), cfg.AdjustMaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.AdjustRetryBase)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.IsProduction())
}

// Sem REDIS_ADDR o endereço fica vazio e o servidor sobe sem limitador.
func TestLoad_RedisOptional(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.RedisAddr)

	t.Setenv("REDIS_ADDR", "redis:6379")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://furnistock@localhost/furnistock?sslmode=disable")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ADJUST_MAX_RETRIES", "5")
	t.Setenv("DB_TIMEOUT", "2s")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, uint64(5), cfg.AdjustMaxRetries)
	assert.Equal(t, 2*time.Second, cfg.DBTimeout)
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"sem segredo JWT", map[string]string{"STORE_DRIVER": "memory"}},
		{"postgres sem DATABASE_URL", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"driver desconhecido", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "sqlite"}},
		{"timeout inválido", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "memory", "DB_TIMEOUT": "cinco"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
