package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	LLM           LLMConfig
	Elasticsearch ElasticsearchConfig
	Fields        FieldsConfig
	Kafka         KafkaConfig
	Bridge        BridgeConfig
	LogLevel      string
}

type ServerConfig struct {
	Port string
}

// LLMConfig describes the model capability. Every value comes from the
// environment; nothing here has a baked-in endpoint or credential.
type LLMConfig struct {
	Provider    string // "gemini" or "openai"
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration // per model call
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type FieldsConfig struct {
	IndexPattern    string
	AutoDiscover    bool
	RefreshSchedule string
	SnapshotPath    string
}

type KafkaConfig struct {
	Brokers    []string
	EventTopic string
}

type BridgeConfig struct {
	Port        string
	UpstreamURL string
	Timeout     time.Duration
}

func NewConfig() (*Config, error) {
	// Configure Viper to read .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LLM_PROVIDER", "gemini")
	viper.SetDefault("LLM_TEMPERATURE", 0)
	viper.SetDefault("LLM_TIMEOUT", "9000s")
	viper.SetDefault("ELASTICSEARCH_ADDRESSES", "")
	viper.SetDefault("FIELDS_INDEX_PATTERN", "logs-*")
	viper.SetDefault("FIELDS_AUTODISCOVER", false)
	viper.SetDefault("FIELDS_REFRESH_SCHEDULE", "0 */15 * * * *") // every 15 minutes
	viper.SetDefault("FIELDS_SNAPSHOT_PATH", "./fields_snapshot.json")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_EVENT_TOPIC", "query_translation_events")
	viper.SetDefault("BRIDGE_PORT", "8001")
	viper.SetDefault("BRIDGE_UPSTREAM_URL", "http://localhost:8000")
	viper.SetDefault("BRIDGE_TIMEOUT", "9000s")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config
	config.Server.Port = viper.GetString("SERVER_PORT")
	config.LogLevel = viper.GetString("LOG_LEVEL")

	// --- LLM ---
	config.LLM.Provider = strings.ToLower(viper.GetString("LLM_PROVIDER"))
	config.LLM.BaseURL = viper.GetString("LLM_BASE_URL")
	config.LLM.Model = viper.GetString("LLM_MODEL")
	config.LLM.APIKey = viper.GetString("LLM_API_KEY")
	config.LLM.Temperature = viper.GetFloat64("LLM_TEMPERATURE")
	config.LLM.Timeout = viper.GetDuration("LLM_TIMEOUT")

	// --- Elasticsearch ---
	config.Elasticsearch.Addresses = splitList(viper.GetString("ELASTICSEARCH_ADDRESSES"))
	config.Elasticsearch.Username = viper.GetString("ELASTICSEARCH_USERNAME")
	config.Elasticsearch.Password = viper.GetString("ELASTICSEARCH_PASSWORD")

	// --- Field catalog ---
	config.Fields.IndexPattern = viper.GetString("FIELDS_INDEX_PATTERN")
	config.Fields.AutoDiscover = viper.GetBool("FIELDS_AUTODISCOVER")
	config.Fields.RefreshSchedule = viper.GetString("FIELDS_REFRESH_SCHEDULE")
	config.Fields.SnapshotPath = viper.GetString("FIELDS_SNAPSHOT_PATH")

	// --- Kafka ---
	config.Kafka.Brokers = splitList(viper.GetString("KAFKA_BROKERS"))
	config.Kafka.EventTopic = viper.GetString("KAFKA_EVENT_TOPIC")

	// --- Bridge ---
	config.Bridge.Port = viper.GetString("BRIDGE_PORT")
	config.Bridge.UpstreamURL = strings.TrimRight(viper.GetString("BRIDGE_UPSTREAM_URL"), "/")
	config.Bridge.Timeout = viper.GetDuration("BRIDGE_TIMEOUT")

	applyLogLevel(config.LogLevel)

	log.Info().Interface("config", config.Masked()).Msg("Config loaded")
	return &config, nil
}

// Masked returns a copy that is safe to log.
func (c Config) Masked() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "****"
	}
	if c.Elasticsearch.Password != "" {
		c.Elasticsearch.Password = "****"
	}
	return c
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
