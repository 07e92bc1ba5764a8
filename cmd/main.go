package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduaid/review-service/internal/config"
	"github.com/eduaid/review-service/internal/infrastructure/db"
	"github.com/eduaid/review-service/internal/infrastructure/repository"
	"github.com/eduaid/review-service/internal/notify"
	"github.com/eduaid/review-service/internal/transport"
	"github.com/eduaid/review-service/internal/transport/handler"
	"github.com/eduaid/review-service/internal/usecase/service"
	"github.com/eduaid/review-service/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Конфигурация
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Логгер
	log, err := logger.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// База данных и миграции
	pool, err := db.NewDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Fatal("failed to init database", zap.Error(err))
	}
	defer pool.Close()

	// Диспетчер уведомлений; без redis работаем с заглушкой
	var notifier notify.Dispatcher = notify.NopDispatcher{}
	if cfg.Redis.Addr != "" {
		redisDispatcher, err := notify.NewRedisDispatcher(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.Queue,
			log,
		)
		if err != nil {
			log.Warn("redis unavailable, notifications disabled", zap.Error(err))
		} else {
			defer redisDispatcher.Close()
			notifier = redisDispatcher
		}
	}

	// Репозитории
	applicationRepo := repository.NewApplicationRepository(pool, log)
	reviewRepo := repository.NewReviewRepository(pool, log)
	boardRepo := repository.NewBoardRepository(pool, log)
	interviewRepo := repository.NewInterviewRepository(pool, log)

	// Сервисы
	applicationSvc := service.NewApplicationService(applicationRepo, notifier, log)
	reviewSvc := service.NewReviewService(reviewRepo, applicationRepo, boardRepo, notifier, log)
	interviewSvc := service.NewInterviewService(interviewRepo, boardRepo, notifier, log)
	decisionSvc := service.NewDecisionService(interviewRepo, notifier, log)

	// Хендлеры и роутер
	applicationHandler := handler.NewApplicationHandler(applicationSvc, log)
	reviewHandler := handler.NewReviewHandler(reviewSvc, log)
	interviewHandler := handler.NewInterviewHandler(interviewSvc, decisionSvc, log)
	healthHandler := handler.NewHealthHandler(log)

	router := transport.NewRouter(applicationHandler, reviewHandler, interviewHandler, healthHandler, log)

	// Сервер
	srv := transport.NewServer(cfg.App.Port, router, log)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
