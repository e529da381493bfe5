package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 9000*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "logs-*", cfg.Fields.IndexPattern)
	assert.False(t, cfg.Fields.AutoDiscover)
	assert.Equal(t, "8001", cfg.Bridge.Port)
	assert.Equal(t, 9000*time.Second, cfg.Bridge.Timeout)
	assert.Empty(t, cfg.Elasticsearch.Addresses)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "http://es-1:9200, http://es-2:9200,")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("BRIDGE_UPSTREAM_URL", "http://translator:8000/")
	t.Setenv("FIELDS_AUTODISCOVER", "true")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://translator:8000", cfg.Bridge.UpstreamURL)
	assert.True(t, cfg.Fields.AutoDiscover)
}

func TestMasked(t *testing.T) {
	cfg := Config{}
	cfg.LLM.APIKey = "secret-key"
	cfg.Elasticsearch.Password = "hunter2"

	masked := cfg.Masked()
	assert.Equal(t, "****", masked.LLM.APIKey)
	assert.Equal(t, "****", masked.Elasticsearch.Password)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey)
}

func TestApplyLogLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	applyLogLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	applyLogLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
