package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, StorePostgres, c.StoreDriver)
	assert.Equal(t, EventsNone, c.EventsBackend)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Empty(t, c.AuthTokens)
	assert.NotEmpty(t, c.Stan.ClientID)
	assert.False(t, c.Stan.IntakeEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_TOKENS", " a, ,b ,")
	t.Setenv("PRICE_LOOKUP_TIMEOUT", "750ms")
	t.Setenv("LOOKUP_CONCURRENCY", "3")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("INTAKE_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, StoreMemory, c.StoreDriver)
	assert.Equal(t, []string{"a", "b"}, c.AuthTokens)
	assert.Equal(t, 750*time.Millisecond, c.PriceLookupTimeout)
	assert.Equal(t, 3, c.LookupConcurrency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.True(t, c.Stan.IntakeEnabled)
	assert.Equal(t, EventsKafka, c.EventsBackend)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORE_DRIVER", "mongo"},
		{"EVENTS_BACKEND", "rabbit"},
		{"LOOKUP_CONCURRENCY", "0"},
		{"LOOKUP_CONCURRENCY", "many"},
		{"PRICE_LOOKUP_TIMEOUT", "soon"},
		{"AUTO_MIGRATE", "maybe"},
		{"LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
