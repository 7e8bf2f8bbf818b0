package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	archiveapp "github.com/grocer/backoffice/internal/application/archive"
	catalogapp "github.com/grocer/backoffice/internal/application/catalog"
	financeapp "github.com/grocer/backoffice/internal/application/finance"
	identityapp "github.com/grocer/backoffice/internal/application/identity"
	"github.com/grocer/backoffice/internal/application/ledger"
	partnerapp "github.com/grocer/backoffice/internal/application/partner"
	tradeapp "github.com/grocer/backoffice/internal/application/trade"
	"github.com/grocer/backoffice/internal/infrastructure/auth"
	"github.com/grocer/backoffice/internal/infrastructure/cache"
	"github.com/grocer/backoffice/internal/infrastructure/config"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/persistence"
	"github.com/grocer/backoffice/internal/infrastructure/storage"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"github.com/grocer/backoffice/internal/interfaces/http/handler"
	"github.com/grocer/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OTEL logs need a logger to report their own setup, so the exporting
	// core is attached after the provider exists
	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if logs.IsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		if log, err = logger.New(logCfg, logs.ZapCore(level)); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logs.Shutdown(context.Background())
		_ = logger.Sync(log)
		os.Exit(1)
	}
	if err := logs.Shutdown(context.Background()); err != nil {
		log.Warn("Failed to flush OTEL logs", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := meter.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to shut down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Failed to stop profiler", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithLockWaitThreshold(cfg.Telemetry.DBLockWaitThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterGormTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		return err
	}

	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}()

	var metrics *telemetry.LedgerMetrics
	if meter.IsEnabled() {
		if metrics, err = telemetry.NewLedgerMetrics(meter.Meter("grocer.ledger")); err != nil {
			return err
		}
	}

	archiveOpts := []archiveapp.Option{archiveapp.WithMetrics(metrics)}
	if cfg.Archive.ExportEnabled {
		exporter, err := storage.NewS3SnapshotExporter(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		archiveOpts = append(archiveOpts, archiveapp.WithExporter(exporter))
		log.Info("Snapshot export enabled",
			zap.String("bucket", cfg.Archive.Bucket),
			zap.String("prefix", cfg.Archive.Prefix),
		)
	}

	txScope := persistence.NewGormTransactionScope(db.DB)
	l := ledger.New(metrics)
	archiver := archiveapp.NewService(txScope, l, archiveOpts...)
	payments := financeapp.NewPaymentService(txScope, l, metrics)

	handlers := router.Handlers{
		Customers:      handler.NewCustomerHandler(partnerapp.NewCustomerService(txScope, archiver), payments),
		Sales:          handler.NewSaleHandler(tradeapp.NewSaleService(txScope, l, archiver), payments),
		Orders:         handler.NewOrderHandler(tradeapp.NewOrderService(txScope, l, archiver)),
		PurchaseOrders: handler.NewPurchaseOrderHandler(tradeapp.NewPurchaseOrderService(txScope, archiver)),
		Cheques:        handler.NewChequeHandler(financeapp.NewChequeService(txScope, l, archiver, metrics)),
		Products:       handler.NewProductHandler(catalogapp.NewProductService(txScope, archiver)),
		Suppliers:      handler.NewSupplierHandler(partnerapp.NewSupplierService(txScope, archiver)),
		Users:          handler.NewUserHandler(identityapp.NewUserService(txScope, archiver)),
		Trash:          handler.NewTrashHandler(archiver),
		Health:         handler.NewHealthHandler(db),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(handlers, router.Dependencies{
		Config:      cfg,
		Logger:      log,
		Verifier:    auth.NewTokenVerifier(cfg.JWT),
		Idempotency: idempotency,
		Meter:       meter,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}
