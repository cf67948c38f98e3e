package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds the shared service settings.
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

// ClickHouse holds the ClickHouse connection settings.
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// SQS holds the telemetry queue settings.
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

// Consumer holds the telemetry ingestion settings.
type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Builder holds the journey build settings.
type Builder struct {
	Workers              int  `envconfig:"BUILDER_WORKERS" default:"4"`
	BatchSize            int  `envconfig:"BUILDER_BATCH_SIZE" default:"500"`
	FlushTimeoutSec      int  `envconfig:"BUILDER_FLUSH_TIMEOUT_SEC" default:"10"`
	FailFast             bool `envconfig:"BUILDER_FAIL_FAST" default:"false"`
	InactivityTimeoutMin int  `envconfig:"BUILDER_INACTIVITY_TIMEOUT_MIN" default:"60"`
}

type Config struct {
	Service    Service
	ClickHouse ClickHouse
	SQS        SQS
	Consumer   Consumer
	Builder    Builder
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
