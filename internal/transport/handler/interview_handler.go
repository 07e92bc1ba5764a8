package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/eduaid/review-service/internal/transport/dto/response"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InterviewService interface {
	Schedule(ctx context.Context, req *request.ScheduleRequest) (*response.InterviewResponse, error)
	Update(ctx context.Context, req *request.UpdateInterviewRequest) (*response.InterviewResponse, error)
	Get(ctx context.Context, req *request.GetInterviewRequest) (*response.InterviewDetailsResponse, error)
}

type DecisionService interface {
	RecordDecision(ctx context.Context, req *request.RecordDecisionRequest) (*response.RecordDecisionResponse, error)
	ListDecisions(ctx context.Context, req *request.ListDecisionsRequest) (*response.DecisionListResponse, error)
}

type InterviewHandler struct {
	svc       InterviewService
	decisions DecisionService
	log       *zap.Logger
}

func NewInterviewHandler(svc InterviewService, decisions DecisionService, log *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		svc:       svc,
		decisions: decisions,
		log:       log,
	}
}

func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель ScheduleRequest
	var req request.ScheduleRequest
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
	resp, err := h.svc.Schedule(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"interview": resp,
	})
}

func (h *InterviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель UpdateInterviewRequest
	var req request.UpdateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}
	req.InterviewId = chi.URLParam(r, "id")

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Update(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"interview": resp,
	})
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	// Идентификатор из пути
	req := request.GetInterviewRequest{
		InterviewId: chi.URLParam(r, "id"),
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
	WriteJSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) RecordDecision(w http.ResponseWriter, r *http.Request) {
	// Парсим json в модель RecordDecisionRequest
	var req request.RecordDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}
	req.InterviewId = chi.URLParam(r, "id")

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.decisions.RecordDecision(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	// Идентификатор из пути
	req := request.ListDecisionsRequest{
		InterviewId: chi.URLParam(r, "id"),
	}

	// Валидация
	if err := validate.Struct(&req); err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	resp, err := h.decisions.ListDecisions(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Ответ
	WriteJSON(w, http.StatusOK, resp)
}
