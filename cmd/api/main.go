package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/session"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"kerneltest/internal/config"
	"kerneltest/internal/database"
	"kerneltest/internal/database/migration"
	handlers "kerneltest/internal/http/handler"
	"kerneltest/internal/http/middleware"
	"kerneltest/internal/logging"
	"kerneltest/internal/metrics"
	tracing "kerneltest/internal/otel"
	"kerneltest/internal/repository/postgres"
	"kerneltest/internal/service"
	"kerneltest/internal/storage"
)

// @title kerneltest API
// @version 1.0
// @description Kernel regression-test result ingestion.
// @BasePath /
func main() {
	cfg := config.Load()
	loc := cfg.Log.Location()
	logger := logging.New(os.Stdout, cfg.Log.Level, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, database.Target(cfg.Database)); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize object storage")
	}

	resultRepo := postgres.NewResultPostgres(db)
	resultSvc := service.NewResultService(objStore, resultRepo, service.Options{
		ReservedUsername: cfg.Upload.ReservedUsername,
		MaxUploadBytes:   cfg.Upload.MaxBytes,
		LogURLExpiry:     time.Duration(cfg.Upload.LogURLExpirySec) * time.Second,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.WithError(err).Fatal("failed to register http metrics")
	}
	uploads, err := metrics.NewUploadMetrics(reg)
	if err != nil {
		logger.WithError(err).Fatal("failed to register upload metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             handlers.BodyLimit(cfg.Upload.MaxBytes),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:     db,
		Health: []handlers.Pinger{objStore},
		UploadDeps: handlers.UploadDeps{
			Results:       resultSvc,
			Metrics:       uploads,
			Logger:        logger,
			AutotestToken: cfg.Upload.AutotestToken,
		},
		Sessions: handlers.NewSessionStore(session.Config{
			Expiration:   time.Duration(cfg.Session.TTLSec) * time.Second,
			CookieSecure: cfg.Session.CookieSecure,
		}),
		UserHeader:   cfg.Session.UserHeader,
		CSRFEnabled:  cfg.Session.CSRFEnabled,
		CookieSecure: cfg.Session.CookieSecure,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"addr":         addr,
			"autotest":     cfg.Upload.AutotestToken != "",
			"csrf":         cfg.Session.CSRFEnabled,
			"max_upload":   cfg.Upload.MaxBytes,
			"db":           database.Target(cfg.Database),
			"minio":        cfg.MinIO.Endpoint,
			"minio_bucket": cfg.MinIO.Bucket,
		}).Info("server_starting")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("failed to start server")
		}
	case <-ctx.Done():
		logger.Info("server_stopping")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("tracer shutdown")
	}
}
