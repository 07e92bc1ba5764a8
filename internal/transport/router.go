package transport

import (
	"time"

	"github.com/eduaid/review-service/internal/transport/handler"
	transportMiddleware "github.com/eduaid/review-service/internal/transport/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(
	applicationHandler *handler.ApplicationHandler,
	reviewHandler *handler.ReviewHandler,
	interviewHandler *handler.InterviewHandler,
	healthHandler *handler.HealthHandler,
	log *zap.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	// Recovery должен быть первым для обработки паник во всех middleware
	router.Use(transportMiddleware.Recovery(log))

	// RequestID для трейсинга запросов
	router.Use(middleware.RequestID)

	// Logging для структурированного логирования всех запросов
	router.Use(transportMiddleware.Logging(log))

	// Timeout для контроля времени выполнения запросов
	router.Use(transportMiddleware.Timeout(500*time.Millisecond, log))

	// Metrics для сбора метрик производительности
	router.Use(transportMiddleware.Metrics)

	// Identity кладёт вызывающего из заголовков шлюза в контекст
	router.Use(transportMiddleware.Identity)

	// Эндпоинт для Prometheus метрик
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/applications", func(r chi.Router) {
		r.Get("/{id}", applicationHandler.Get)
		r.Post("/{id}/submit", applicationHandler.Submit)
		r.Post("/{id}/status", applicationHandler.SetStatus)
	})

	router.Route("/field-reviews", func(r chi.Router) {
		r.Get("/", reviewHandler.List)
		r.Post("/", reviewHandler.Assign)
		r.Post("/{id}/reassign", reviewHandler.Reassign)
		r.Post("/{id}/complete", reviewHandler.Complete)
		r.Delete("/{id}", reviewHandler.Unassign)
	})

	router.Route("/interviews", func(r chi.Router) {
		r.Post("/", interviewHandler.Schedule)
		r.Get("/{id}", interviewHandler.Get)
		r.Patch("/{id}", interviewHandler.Update)
		r.Post("/{id}/decision", interviewHandler.RecordDecision)
		r.Get("/{id}/decisions", interviewHandler.ListDecisions)
	})

	router.Get("/health", healthHandler.HealthCheck)
	return router
}
