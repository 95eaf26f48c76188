package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// NEO catalog and linking.
	NEOCatalogPath string
	DropUnlinked   bool

	// JPL CAD API client configuration.
	JPLCADURL  string
	JPLTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	jplTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("JPL_TIMEOUT", "30s"))
	if err != nil || jplTimeout <= 0 {
		return nil, errors.New("invalid JPL_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	dropUnlinked := false
	if v := os.Getenv("DROP_UNLINKED"); v != "" {
		if v != "true" && v != "false" {
			return nil, errors.New("DROP_UNLINKED must be true or false")
		}
		dropUnlinked = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-close-approaches"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "linked-close-approaches"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "neo-approach-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		NEOCatalogPath: sharedcfg.EnvOrDefault("NEO_CATALOG_PATH", "data/neos.csv"),
		DropUnlinked:   dropUnlinked,

		JPLCADURL:  sharedcfg.EnvOrDefault("JPL_CAD_URL", "https://ssd-api.jpl.nasa.gov/cad.api"),
		JPLTimeout: jplTimeout,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.NEOCatalogPath == "" {
		return nil, errors.New("NEO_CATALOG_PATH is required")
	}

	return cfg, nil
}
