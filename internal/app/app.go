package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"visionapi/config"
	kafkactrl "visionapi/internal/controller/kafka"
	"visionapi/internal/controller/restapi"
	"visionapi/internal/controller/worker/outbox"
	infrakafka "visionapi/internal/infrastructure/kafka"
	"visionapi/internal/repo"
	"visionapi/internal/repo/persistent"
	"visionapi/internal/usecase/analysis"
	"visionapi/internal/usecase/image"
	"visionapi/pkg/httpserver"
	"visionapi/pkg/kafka/consumer"
	"visionapi/pkg/kafka/producer"
	"visionapi/pkg/logger"
	"visionapi/pkg/postgres"
	"visionapi/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3 is the system of record for bytes, without it there is nothing
	// to serve
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey,
		s3client.Region(cfg.S3.Region),
		s3client.UsePathStyle(cfg.S3.UsePathStyle),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres is optional, the service degrades to storage-only when it
	// is missing or unreachable
	var pg *postgres.Postgres
	if cfg.PG.URL == "" {
		l.Warn("app - Run - PG_URL not set, running storage-only")
	} else {
		pg, err = postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			l.Warn("app - Run - postgres.New: %s, running storage-only", err)
			pg = nil
		} else {
			defer pg.Close()
		}
	}

	var (
		metadataRepo  repo.ImageMetadataRepo
		detectionRepo repo.DetectionRepo
		logRepo       repo.ProcessingLogRepo
		outboxRepo    repo.OutboxRepo
		transactor    repo.Transactor
	)
	if pg != nil {
		metadataRepo = persistent.NewImageMetadataRepo(pg)
		detectionRepo = persistent.NewDetectionRepo(pg)
		logRepo = persistent.NewProcessingLogRepo(pg)
		outboxRepo = persistent.NewOutboxRepo(pg)
		transactor = pg
	}

	// Use-Case
	imageUseCase := image.New(
		persistent.NewObjectRepo(s3c, cfg.S3.Bucket),
		metadataRepo,
		detectionRepo,
		logRepo,
		outboxRepo,
		transactor,
		image.Options{
			Bucket:       cfg.S3.Bucket,
			UploadPrefix: cfg.S3.UploadPrefix,
			PresignTTL:   cfg.S3.PresignTTL,
			UploaderTag:  cfg.App.UploaderTag,
		},
		l,
	)

	// Kafka side runs only with both a broker and a metadata store: the
	// relay reads the outbox table and the consumer writes detections.
	var (
		outboxRelayWorker *outbox.OutboxRelay
		kafkaController   *kafkactrl.KafkaController
	)
	if len(cfg.Kafka.Brokers) > 0 && pg != nil {
		// Kafka Producer
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}

		// Outbox Relay Worker
		outboxRelayWorker = outbox.New(
			imageUseCase,
			infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.UploadsTopic),
			l,
			cfg.OutboxRelay.PollInterval,
			cfg.OutboxRelay.CleanupInterval,
			cfg.OutboxRelay.MarkFailedInterval,
			cfg.OutboxRelay.ProcessBatchTimeout,
			cfg.OutboxRelay.BatchSize,
			cfg.OutboxRelay.MaxRetries,
		)

		// Kafka Consumer
		kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ResultsTopic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
		}

		// analysis use-case
		analysisUseCase := analysis.New(metadataRepo, detectionRepo, logRepo, transactor, l)

		// Kafka as Controller
		kafkaController = kafkactrl.New(
			analysisUseCase,
			infrakafka.NewEventConsumer(kafkaConsumer),
			l,
			cfg.ResultsConsumer.CommitTimeout,
			cfg.ResultsConsumer.ProcessTimeout,
			runtime.NumCPU(),
		)
	} else if len(cfg.Kafka.Brokers) > 0 {
		l.Warn("app - Run - KAFKA_BROKERS set without PG_URL, skipping relay and results consumer")
	}

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, imageUseCase, l)

	// Start Components
	if outboxRelayWorker != nil {
		err = outboxRelayWorker.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
		}
	}
	if kafkaController != nil {
		err = kafkaController.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if outboxRelayWorker != nil {
		orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
		defer orlShutdownCancel()
		err = outboxRelayWorker.Shutdown(orlShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
		}
	}

	if kafkaController != nil {
		kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.ResultsConsumer.ShutdownTimeout)
		defer kcShutdownCancel()
		err = kafkaController.Shutdown(kcShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
		}
	}
}
