package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/eduaid/review-service/internal/transport/dto/response"
	"github.com/eduaid/review-service/internal/transport/middleware"
	"github.com/eduaid/review-service/internal/usecase/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testReviewId  = "8d3e46c2-7ac9-4b61-9f86-3d8f4e8a3c03"
	testOfficerId = "9e4f57d3-8bda-4c72-a097-4e9a5f9b4d04"
)

// MockReviewService мок сервиса для тестов
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Assign(ctx context.Context, req *request.AssignRequest) (*response.ReviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Reassign(ctx context.Context, req *request.ReassignRequest) (*response.ReviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Complete(ctx context.Context, req *request.CompleteRequest) (*response.ReviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Unassign(ctx context.Context, req *request.UnassignRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockReviewService) List(ctx context.Context, actor domain.Actor) (*response.ReviewListResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.ReviewListResponse), args.Error(1)
}

func reviewResponse() *response.ReviewResponse {
	now := time.Now().Format(time.RFC3339)
	return &response.ReviewResponse{
		ReviewId:      testReviewId,
		ApplicationId: testAppId,
		StudentId:     testStudentId,
		OfficerId:     testOfficerId,
		Status:        "PENDING",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestReviewHandler_Assign_Success(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService, logger)

	mockService.On("Assign", mock.Anything, mock.MatchedBy(func(r *request.AssignRequest) bool {
		return r.ApplicationId == testAppId && r.OfficerId == testOfficerId
	})).Return(reviewResponse(), nil)

	body, _ := json.Marshal(request.AssignRequest{
		ApplicationId: testAppId,
		StudentId:     testStudentId,
		OfficerId:     testOfficerId,
	})
	req := httptest.NewRequest(http.MethodPost, "/field-reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Assign(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestReviewHandler_Assign_Duplicate(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService, logger)

	mockService.On("Assign", mock.Anything, mock.Anything).
		Return(nil, service.WrapError(service.ErrDuplicateAssignment,
			errors.New("officer "+testOfficerId+" already assigned to application "+testAppId+" with this task type")))

	body, _ := json.Marshal(request.AssignRequest{
		ApplicationId: testAppId,
		StudentId:     testStudentId,
		OfficerId:     testOfficerId,
	})
	req := httptest.NewRequest(http.MethodPost, "/field-reviews", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Assign(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	assert.NoError(t, err)
	assert.Equal(t, "DUPLICATE_ASSIGNMENT", errResp.Error.Code)
	assert.Contains(t, errResp.Error.Details, testOfficerId)
}

func TestReviewHandler_Unassign_NoContent(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService, logger)

	mockService.On("Unassign", mock.Anything, mock.MatchedBy(func(r *request.UnassignRequest) bool {
		return r.ReviewId == testReviewId
	})).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/field-reviews/"+testReviewId, nil)
	req = withURLParam(req, "id", testReviewId)
	w := httptest.NewRecorder()

	handler.Unassign(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

func TestReviewHandler_List_PassesActorFromHeaders(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService, logger)

	mockService.On("List", mock.Anything, domain.Actor{
		UserId: testOfficerId,
		Role:   domain.RoleFieldOfficer,
	}).Return(&response.ReviewListResponse{Reviews: []*response.ReviewResponse{reviewResponse()}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/field-reviews", nil)
	req.Header.Set("X-Actor-Id", testOfficerId)
	req.Header.Set("X-Actor-Role", "FIELD_OFFICER")
	w := httptest.NewRecorder()

	// Identity кладёт вызывающего в контекст до хендлера
	middleware.Identity(http.HandlerFunc(handler.List)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response.ReviewListResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Len(t, resp.Reviews, 1)
	mockService.AssertExpectations(t)
}

func TestReviewHandler_List_MissingRoleForbidden(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService, logger)

	// Запрос без заголовков личности: вызывающий без роли, никаких прав
	mockService.On("List", mock.Anything, domain.Actor{}).
		Return(nil, service.WrapError(service.ErrForbidden, errors.New("role is empty")))

	req := httptest.NewRequest(http.MethodGet, "/field-reviews", nil)
	w := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(handler.List)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	assert.NoError(t, err)
	assert.Equal(t, "FORBIDDEN", errResp.Error.Code)
	mockService.AssertExpectations(t)
}
