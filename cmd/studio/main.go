package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/api"
	"github.com/pixelforge/studio/pkg/checkout"
	"github.com/pixelforge/studio/pkg/config"
	"github.com/pixelforge/studio/pkg/dashboard"
	"github.com/pixelforge/studio/pkg/identity"
	"github.com/pixelforge/studio/pkg/mailer"
	"github.com/pixelforge/studio/pkg/maintenance"
	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
	"github.com/pixelforge/studio/pkg/uploads"
	"github.com/pixelforge/studio/pkg/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	// Database
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to ping database")
	}
	for _, ensure := range []func(context.Context, *sql.DB) error{
		submission.EnsureSchema,
		identity.EnsureSchema,
		checkout.EnsureSchema,
	} {
		if err := ensure(ctx, db); err != nil {
			logger.WithError(err).Fatal("Failed to create schema")
		}
	}
	logger.WithField("driver", cfg.Database.Driver).Info("Database ready")

	// Price table
	table := pricing.DefaultTable()
	var stopWatch func()
	if cfg.Pricing.File != "" {
		if err := table.LoadFile(cfg.Pricing.File); err != nil {
			logger.WithError(err).Fatal("Failed to load price table")
		}
		logger.WithField("file", cfg.Pricing.File).Info("Price table loaded")
		if cfg.Pricing.Watch {
			stopWatch, err = table.Watch(cfg.Pricing.File, logger)
			if err != nil {
				logger.WithError(err).Fatal("Failed to watch price table")
			}
		}
	}

	// Wizard session store
	var (
		sessions    wizard.SessionStore
		memSessions *wizard.MemoryStore
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("Failed to ping redis")
		}
		sessions = wizard.NewRedisStore(redisClient, cfg.Wizard.SessionTTL)
		logger.WithField("addr", cfg.Redis.Addr).Info("Wizard sessions in redis")
	} else {
		memSessions = wizard.NewMemoryStore(cfg.Wizard.SessionTTL)
		sessions = memSessions
		logger.Info("Wizard sessions in process memory")
	}

	// Upload storage
	uploadStore, err := newUploadStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize upload storage")
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Services
	submissions := submission.NewStore(db)
	identityMgr := identity.NewManager(db)
	checkoutSvc := checkout.NewService(db, table, submissions, cfg.Checkout.BaseURL, logger)
	sender := mailer.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUsername, cfg.Mail.SMTPPassword)
	notifier := mailer.NewService(sender, table, cfg.Mail.From, cfg.Mail.OperatorEmail, metrics, logger)
	machine := wizard.NewMachine(table, submissions, checkoutSvc, notifier, identityMgr, uploadStore, logger)
	reader := dashboard.NewReader(submissions, table, metrics, logger)

	server := api.NewServer(api.Deps{
		Table:         table,
		Machine:       machine,
		Sessions:      sessions,
		Checkout:      checkoutSvc,
		Dashboard:     reader,
		Identity:      identityMgr,
		Uploads:       uploadStore,
		WebhookSecret: cfg.Checkout.WebhookSecret,
		Metrics:       metrics,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate listener
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	observability.RegisterMetricsEndpoint(healthMux, registry)
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	// Background maintenance
	janitor := maintenance.NewJanitor(db, submissions, memSessions, metrics, logger)
	if err := janitor.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start janitor")
	}

	shutdownLogger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stdout)
	shutdown := observability.NewShutdownManager(shutdownLogger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.OnShutdown("health-server", func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.OnShutdown("janitor", janitor.Stop)
	shutdown.OnShutdown("database", func(ctx context.Context) error {
		return db.Close()
	})
	if redisClient != nil {
		shutdown.OnShutdown("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	if stopWatch != nil {
		shutdown.OnShutdown("pricing-watch", func(ctx context.Context) error {
			stopWatch()
			return nil
		})
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting Studio API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func newUploadStore(ctx context.Context, cfg *config.Config) (uploads.Store, error) {
	switch cfg.Uploads.Type {
	case "s3":
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Uploads.S3Region),
		}
		if cfg.Uploads.S3AccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.Uploads.S3AccessKey, cfg.Uploads.S3SecretKey, "")))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Uploads.S3Endpoint != "" {
				o.BaseEndpoint = &cfg.Uploads.S3Endpoint
				o.UsePathStyle = true
			}
		})
		return uploads.NewS3Store(client, cfg.Uploads.S3Bucket, cfg.Uploads.S3Prefix), nil
	default:
		return uploads.NewFileSystemStore(cfg.Uploads.Root)
	}
}
