package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"maturity-dashboard/internal/config"
	"maturity-dashboard/internal/handler"
	"maturity-dashboard/internal/httpserver"
	"maturity-dashboard/internal/repository"
	"maturity-dashboard/internal/service"
	"maturity-dashboard/pkg/circuitbreaker"
	"maturity-dashboard/pkg/db"
	"maturity-dashboard/pkg/logger"
	"maturity-dashboard/pkg/mq"
	"maturity-dashboard/pkg/outbox"
	redisclient "maturity-dashboard/pkg/redis"
	"maturity-dashboard/pkg/refreshgate"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting dashboard API...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()

	// MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// 直接发布（手动刷新）走熔断器，outbox 自带重试
	breaker := mq.NewBreakerPublisher(publisher, circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()))

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, outboxRepo, log)
	actionPlanRepo := repository.NewActionPlanRepository(dbConn, outboxRepo, log)
	userRepo := repository.NewUserRepository(dbConn, log)
	digestCache := repository.NewDigestCache(rdb, 24*time.Hour)

	// Services
	gate := refreshgate.New(refreshgate.NewRedisStore(rdb), "manual", cfg.Refresh.ManualWindow(), log)
	dashboard := service.NewDashboardService(
		projectRepo, milestoneRepo, actionPlanRepo, digestCache,
		gate, breaker, cfg.AlertConfig(), log,
	)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenTTL(), log)

	// Outbox Dispatcher
	dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
	defer dispatchCancel()
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(dispatchCtx)

	// Handlers
	router := httpserver.NewRouter(
		handler.NewAuthHandler(authService, log),
		handler.NewProjectHandler(dashboard, cfg.I18n.DefaultLocale, log),
		handler.NewStatusHandler(dashboard, log),
		cfg.JWT.Secret,
		dbConn,
		publisher,
		log,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down dashboard API gracefully...")
	dispatchCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Dashboard API shutdown complete")
}
