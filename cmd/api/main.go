package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regapi/internal/cache"
	"regapi/internal/config"
	"regapi/internal/database"
	"regapi/internal/database/migration"
	handlers "regapi/internal/http/handler"
	"regapi/internal/http/middleware"
	"regapi/internal/logging"
	"regapi/internal/otel"
	"regapi/internal/queue"
	"regapi/internal/repository/postgres"
	"regapi/internal/service"
	"regapi/internal/storage"
)

// @title Registration API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.New(os.Stdout, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, loc, logger); err != nil {
		logger.Error("server_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, loc *time.Location, logger *slog.Logger) error {
	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL connection (pooled via database/sql, traced via otelsql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		return err
	}

	deps := service.Dependencies{
		Location:      loc,
		Logger:        logger,
		PresignExpiry: time.Duration(cfg.MinIO.PresignExpirySec) * time.Second,
	}

	// Optional backends: each one stays off when its address is not configured.
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		deps.Store = store
	} else {
		logger.Warn("object_storage_disabled")
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()
		deps.Cache = rc
	} else {
		logger.Warn("cache_disabled")
	}

	if cfg.RabbitMQ.URL != "" {
		pub, err := queue.NewAMQP(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer pub.Close()
		deps.Publisher = pub
	} else {
		logger.Warn("event_publishing_disabled")
	}

	regRepo := postgres.NewRegistrationPostgres(db)
	regSvc := service.NewRegistrationService(regRepo, deps)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// RequestID first so every later middleware and handler can read it
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, regSvc, loc)

	handlers.RegisterSwagger(app)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_starting", slog.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_stopping")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
