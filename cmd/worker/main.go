package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/carewatch-api/internal/config"
	"github.com/jwalitptl/carewatch-api/internal/handler/health"
	"github.com/jwalitptl/carewatch-api/internal/handler/prometheus"
	"github.com/jwalitptl/carewatch-api/internal/middleware"
	"github.com/jwalitptl/carewatch-api/internal/repository/postgres"
	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/messaging/redis"
	"github.com/jwalitptl/carewatch-api/pkg/metrics"
	"github.com/jwalitptl/carewatch-api/pkg/worker"
)

const (
	healthAddr      = ":8081"
	cleanupInterval = time.Hour
)

func setupHealthCheck(log *logger.Logger, db health.Pinger, m *metrics.Metrics) *http.Server {
	promHandler, err := prometheus.New(m)
	if err != nil {
		log.Fatal(err, "Failed to register metrics")
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(log))
	health.NewHandler(db).RegisterRoutes(engine)
	engine.GET("/metrics", promHandler.Handler())

	srv := &http.Server{Addr: healthAddr, Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load config")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig())
	if err := cfg.Validate(); err != nil {
		log.Fatal(err, "Invalid configuration")
	}
	gin.SetMode(gin.ReleaseMode)

	db, err := postgres.NewDB(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.ZL)
	if err != nil {
		log.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.New("carewatch_worker")

	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		log,
		m,
	)
	if err != nil {
		log.Fatal(err, "Failed to create outbox processor")
	}
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cleanupInterval, log)

	healthSrv := setupHealthCheck(log, db, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Health server forced to shutdown")
	}
	log.Info("Worker stopped")
}
