package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		App             App
		HTTP            HTTP
		Log             Log
		PG              PG
		S3              S3
		Kafka           Kafka
		OutboxRelay     OutboxRelay
		ResultsConsumer ResultsConsumer
		Swagger         Swagger
	}

	App struct {
		UploaderTag string `env:"APP_UPLOADER_TAG" envDefault:"image-recognition-system"`
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		StaticDir      string `env:"HTTP_STATIC_DIR"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	// PG is optional: with no URL the service runs storage-only and
	// every metadata feature degrades gracefully.
	PG struct {
		URL     string `env:"PG_URL"`
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"2"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		Region         string        `env:"S3_REGION" envDefault:"us-west-2"`
		UsePathStyle   bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
		PresignTTL     time.Duration `env:"S3_PRESIGN_TTL" envDefault:"1h"`
		UploadPrefix   string        `env:"S3_UPLOAD_PREFIX" envDefault:"uploads/"`
	}

	// Kafka is optional: with no brokers the outbox stays pending and no
	// analysis results arrive, which matches storage-only deployments.
	Kafka struct {
		Brokers      []string `env:"KAFKA_BROKERS"`
		GroupID      string   `env:"KAFKA_GROUP_ID" envDefault:"vision-api"`
		UploadsTopic string   `env:"KAFKA_UPLOADS_TOPIC" envDefault:"images.uploaded"`
		ResultsTopic string   `env:"KAFKA_RESULTS_TOPIC" envDefault:"images.analyzed"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	ResultsConsumer struct {
		CommitTimeout   time.Duration `env:"RESULTS_CONSUMER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"RESULTS_CONSUMER_PROCESS_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"RESULTS_CONSUMER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
