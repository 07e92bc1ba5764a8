package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/eduaid/review-service/internal/transport/dto/response"
	"github.com/eduaid/review-service/internal/transport/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewService interface {
	Assign(ctx context.Context, req *request.AssignRequest) (*response.ReviewResponse, error)
	Reassign(ctx context.Context, req *request.ReassignRequest) (*response.ReviewResponse, error)
	Complete(ctx context.Context, req *request.CompleteRequest) (*response.ReviewResponse, error)
	Unassign(ctx context.Context, req *request.UnassignRequest) error
	List(ctx context.Context, actor domain.Actor) (*response.ReviewListResponse, error)
}

type ReviewHandler struct {
	svc ReviewService
	log *zap.Logger
}

func NewReviewHandler(svc ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		svc: svc,
		log: log,
	}
}

func (h *ReviewHandler) Assign(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель AssignRequest
	var req request.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Assign(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"review": resp,
	})
}

func (h *ReviewHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель ReassignRequest
	var req request.ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}
	req.ReviewId = chi.URLParam(r, "id")

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Reassign(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"review": resp,
	})
}

func (h *ReviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель CompleteRequest
	var req request.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}
	req.ReviewId = chi.URLParam(r, "id")

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Complete(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"review": resp,
	})
}

func (h *ReviewHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	// Идентификатор из пути
	req := request.UnassignRequest{
		ReviewId: chi.URLParam(r, "id"),
	}

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	if err := h.svc.Unassign(r.Context(), &req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	// Роль вызывающего определяет область видимости
	actor := middleware.ActorFromContext(r.Context())

	// Вызов сервиса
	resp, err := h.svc.List(r.Context(), actor)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, resp)
}
