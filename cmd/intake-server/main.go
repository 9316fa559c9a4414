// cmd/intake-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"application-intake/internal/api"
	"application-intake/internal/common/aws"
	"application-intake/internal/common/camunda"
	"application-intake/internal/common/config"
	"application-intake/internal/common/database"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/observability"
	"application-intake/migrations"

	car "application-intake/internal/workers/application/create-application-record"
	ia "application-intake/internal/workers/application/index-application"
	sn "application-intake/internal/workers/application/send-notification"
	sad "application-intake/internal/workers/application/store-application-documents"
	sa "application-intake/internal/workers/application/submit-application"
	vad "application-intake/internal/workers/application/validate-application-data"
	es "application-intake/internal/workers/communication/email-send"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting application intake...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	statements, err := migrations.Statements()
	if err != nil {
		zapLog.Fatal("load migrations failed", zap.Error(err))
	}
	if err := pg.Migrate(ctx, statements...); err != nil {
		zapLog.Fatal("migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully", zap.Int("migrationStatements", len(statements)))

	checks := map[string]api.Pinger{"postgres": pg}

	// --- Redis (optional) ---
	var guard *sa.SubmissionGuard
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		guard = sa.NewSubmissionGuard(rdb.Client, config.GetDuration(cfg.Database.Redis.GuardTTL), log)
		checks["redis"] = rdb
		zapLog.Info("Redis connected successfully")
	}

	// --- Elasticsearch (optional) ---
	var indexer *ia.Indexer
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = ia.NewIndexer(ia.LoadConfig(cfg.Database.Elasticsearch), esClient.Client, log)
		checks["elasticsearch"] = esClient
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Document storage ---
	s3Client, err := aws.NewS3Client(ctx, aws.S3Options{
		Region:       cfg.Storage.S3.Region,
		Endpoint:     cfg.Storage.S3.Endpoint,
		UsePathStyle: cfg.Storage.S3.UsePathStyle,
	})
	if err != nil {
		zapLog.Fatal("s3 client failed", zap.Error(err))
	}
	documents := sad.NewStore(sad.LoadConfig(cfg.Storage.S3.Bucket), s3Client, log)

	// --- Email ---
	emailCfg := es.FromEmailConfig(cfg.Email)
	var sesClient es.SESAPI
	if emailCfg.Provider == es.ProviderSES {
		client, err := aws.NewSESClient(ctx, cfg.Email.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sesClient = client
	}
	transport, err := es.NewTransport(emailCfg, sesClient, log)
	if err != nil {
		zapLog.Fatal("email transport failed", zap.Error(err))
	}
	mailer := es.NewService(es.ServiceDependencies{Logger: log, Transport: transport}, emailCfg)
	notifier := sn.NewHandler(sn.LoadConfig(cfg), mailer, documents, log)
	zapLog.Info("Email transport ready", zap.String("provider", transport.Name()))

	// --- Orchestrator ---
	records := car.NewStore(car.LoadConfig(), pg.DB, log)
	orchestrator := sa.NewOrchestrator(sa.LoadConfig(cfg), sa.Dependencies{
		Records:       records,
		Documents:     documents,
		Notifier:      notifier,
		Indexer:       indexer,
		Guard:         guard,
		Observability: obs,
		Logger:        log,
	})

	// --- Zeebe workers (optional) ---
	if cfg.Camunda.Enabled {
		var registrar *camunda.Registrar
		err = retryWithBackoff(func() error {
			client, err := camunda.NewClient(cfg.Camunda)
			if err != nil {
				return err
			}
			registrar = camunda.NewRegistrar(client, log)
			return nil
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer registrar.Close()

		validator := vad.NewHandler(vad.LoadConfig(), log)
		registrar.Register(vad.TaskType, config.GetWorkerConfig(cfg, vad.TaskType), validator.Handle)
		registrar.Register(sn.TaskTypeApplicationEmail, config.GetWorkerConfig(cfg, sn.TaskTypeApplicationEmail), notifier.HandleApplicationEmail)
		registrar.Register(sn.TaskTypeConfirmationEmail, config.GetWorkerConfig(cfg, sn.TaskTypeConfirmationEmail), notifier.HandleConfirmationEmail)
		zapLog.Info("Zeebe workers registered")
	}

	// --- HTTP ---
	router := api.NewRouter(api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, api.Dependencies{
		Submitter: orchestrator,
		Notifier:  notifier,
		Checks:    checks,
		Logger:    log,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	zapLog.Info("Shutting down...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
