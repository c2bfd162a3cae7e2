package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/infra/config"
	"github.com/mikel-p-h/PFG/internal/infra/email"
	"github.com/mikel-p-h/PFG/internal/infra/ffmpeg"
	"github.com/mikel-p-h/PFG/internal/infra/metrics"
	miniostorage "github.com/mikel-p-h/PFG/internal/infra/minio"
	"github.com/mikel-p-h/PFG/internal/infra/postgres"
	"github.com/mikel-p-h/PFG/internal/infra/rabbitmq"
	"github.com/mikel-p-h/PFG/internal/infra/tracing"
	"github.com/mikel-p-h/PFG/internal/media"
	"github.com/mikel-p-h/PFG/internal/training"
	"github.com/mikel-p-h/PFG/internal/usecase"
	"github.com/mikel-p-h/PFG/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting pfg-dataset-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		UploadBucket: cfg.MinIOUploadBucket,
		ExportBucket: cfg.MinIOExportBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	projectRepo := postgres.NewProjectRepository(pool)
	frameRepo := postgres.NewFrameRepository(pool)
	sampler := ffmpeg.NewSampler(log)
	decoder := media.NewDecoder(sampler, log)
	trainer := training.NewClient(cfg.FSODURL, time.Duration(cfg.FSODTimeoutS)*time.Second, log)
	coordinator := training.NewCoordinator(frameRepo, trainer, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// Use case
	uc := usecase.NewCatalogJobUseCase(
		projectRepo, frameRepo, storage, decoder, coordinator,
		statusPub, dlqPub, notifier,
		log,
		usecase.CatalogJobConfig{
			TempDir: cfg.TempDir,
			DefaultParams: entity.Hyperparams{
				Model:        cfg.TrainModel,
				Epochs:       cfg.TrainEpochs,
				ImageSize:    cfg.TrainImageSz,
				Batch:        cfg.TrainBatch,
				LearningRate: cfg.TrainLearnRte,
			},
		},
	)

	// Metrics server
	metricsSrv := metrics.StartServer(cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQJobsQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("pfg-dataset-service started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("pfg-dataset-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
