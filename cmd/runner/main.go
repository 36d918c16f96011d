package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"maturity-dashboard/internal/config"
	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/httpserver"
	"maturity-dashboard/internal/mqhandler"
	"maturity-dashboard/internal/repository"
	"maturity-dashboard/internal/runner"
	"maturity-dashboard/pkg/db"
	"maturity-dashboard/pkg/dedup"
	"maturity-dashboard/pkg/logger"
	"maturity-dashboard/pkg/mq"
	"maturity-dashboard/pkg/outbox"
	redisclient "maturity-dashboard/pkg/redis"
	"maturity-dashboard/pkg/refreshgate"
)

const (
	actionPlanQueue = "runner.actionplan.updated"
	refreshQueue    = "runner.project.refresh"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting digest runner...",
		zap.String("schedule", cfg.Runner.Schedule),
		zap.String("mq_url", cfg.MQ.URL),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb, err := redisclient.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	store := refreshgate.NewRedisStore(rdb)
	outboxRepo := outbox.NewRepository(dbConn)
	gen := runner.NewDigestGenerator(
		repository.NewProjectRepository(dbConn, log),
		repository.NewActionPlanRepository(dbConn, outboxRepo, log),
		repository.NewDigestCache(rdb, 24*time.Hour),
		publisher,
		refreshgate.New(store, "scan", cfg.Refresh.ScanWindow(), log),
		refreshgate.New(store, "digest", cfg.Refresh.EventWindow(), log),
		cfg.AlertConfig(),
		log,
	)
	deduper := dedup.NewDeduper(store, 24*time.Hour, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Consumers
	planConsumer, err := mq.NewConsumer(cfg.MQ.URL, actionPlanQueue, event.ActionPlanUpdated, log)
	if err != nil {
		log.Fatal("Failed to init action plan consumer", zap.Error(err))
	}
	defer planConsumer.Close()
	planConsumer.SetHandler(mqhandler.NewActionPlanUpdatedHandler(gen, deduper, runner.TriggerEvent, log).Handle)

	refreshConsumer, err := mq.NewConsumer(cfg.MQ.URL, refreshQueue, event.ProjectRefresh, log)
	if err != nil {
		log.Fatal("Failed to init refresh consumer", zap.Error(err))
	}
	defer refreshConsumer.Close()
	refreshConsumer.SetHandler(mqhandler.NewProjectRefreshHandler(gen, deduper, runner.TriggerManual, log).Handle)

	consumers, consumeCtx := errgroup.WithContext(ctx)
	for _, c := range []*mq.Consumer{planConsumer, refreshConsumer} {
		consumers.Go(func() error {
			return c.StartConsuming(consumeCtx)
		})
	}

	// Scheduler
	scheduler := runner.NewScheduler(log)
	if err := scheduler.AddJob(cfg.Runner.Schedule, runner.NewScanJob(gen)); err != nil {
		log.Fatal("Failed to register digest scan", zap.Error(err))
	}
	scheduler.Start()

	// HTTP Server (for health checks)
	engine := gin.New()
	engine.Use(gin.Recovery())
	httpserver.RegisterHealth(engine, dbConn, planConsumer)
	srv := &http.Server{
		Addr:              cfg.Runner.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Runner.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("Digest runner is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-consumeCtx.Done():
		// 任一消费者退出（连接断开）时整体重启
		log.Error("Consumer exited, shutting down")
	}

	log.Info("Shutting down digest runner gracefully...")
	cancel()
	scheduler.Stop()
	if err := consumers.Wait(); err != nil {
		log.Error("Consumer stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Digest runner shutdown complete")
}
