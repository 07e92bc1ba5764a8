package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/eduaid/review-service/internal/transport/dto/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

type ApplicationService interface {
	Submit(ctx context.Context, req *request.SubmitRequest) (*response.ApplicationResponse, error)
	SetStatus(ctx context.Context, req *request.SetStatusRequest) (*response.ApplicationResponse, error)
	Get(ctx context.Context, req *request.GetApplicationRequest) (*response.ApplicationResponse, error)
}

type ApplicationHandler struct {
	svc ApplicationService
	log *zap.Logger
}

func NewApplicationHandler(svc ApplicationService, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		svc: svc,
		log: log,
	}
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// Идентификатор из пути
	req := request.SubmitRequest{
		ApplicationId: chi.URLParam(r, "id"),
	}

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"application": resp,
	})
}

func (h *ApplicationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель SetStatusRequest
	var req request.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}
	req.ApplicationId = chi.URLParam(r, "id")

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.SetStatus(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"application": resp,
	})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	// Идентификатор из пути
	req := request.GetApplicationRequest{
		ApplicationId: chi.URLParam(r, "id"),
	}

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Get(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"application": resp,
	})
}
