package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eduaid/review-service/internal/usecase/service"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HandleError маппит доменные ошибки на HTTP коды и ErrorResponse
func HandleError(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusOK, ErrorResponse{}
	}

	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		// Маппим код ошибки на HTTP статус
		statusCode := mapErrorCodeToHTTPStatus(domainErr.Code)

		// В details попадает причина с id нарушившей сущности или поля
		var details string
		if domainErr.Err != nil {
			details = domainErr.Err.Error()
		}

		return statusCode, ErrorResponse{
			Error: ErrorDetail{
				Code:    domainErr.Code,
				Message: domainErr.Message,
				Details: details,
			},
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_INPUT",
				Message: "invalid input",
				Details: validationErrs.Error(),
			},
		}
	}

	// Неизвестная ошибка - возвращаем 500
	return http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	}
}

// mapErrorCodeToHTTPStatus маппит код ошибки из таксономии на HTTP статус
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case "INVALID_STATE":
		return http.StatusConflict // 409
	case "DUPLICATE_ASSIGNMENT":
		return http.StatusConflict // 409
	case "CONFLICT":
		return http.StatusConflict // 409
	case "INVALID_REFERENCE":
		return http.StatusBadRequest // 400
	case "INVALID_INPUT":
		return http.StatusBadRequest // 400
	case "FORBIDDEN":
		return http.StatusForbidden // 403
	case "NOT_FOUND":
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteError отправляет ErrorResponse клиенту
func WriteError(w http.ResponseWriter, statusCode int, errResp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errResp)
}

// WriteJSON отправляет успешный ответ клиенту
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
