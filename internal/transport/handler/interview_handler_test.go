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

	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/eduaid/review-service/internal/transport/dto/response"
	"github.com/eduaid/review-service/internal/usecase/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testInterviewId = "cb7c8aa6-bead-4fa5-83ca-7bcd8cce7a07"
	testMemberId    = "dc8d9bb7-cfbe-4ab6-94db-8cde9ddf8b08"
)

// MockInterviewService мок сервиса для тестов
type MockInterviewService struct {
	mock.Mock
}

func (m *MockInterviewService) Schedule(ctx context.Context, req *request.ScheduleRequest) (*response.InterviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.InterviewResponse), args.Error(1)
}

func (m *MockInterviewService) Update(ctx context.Context, req *request.UpdateInterviewRequest) (*response.InterviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.InterviewResponse), args.Error(1)
}

func (m *MockInterviewService) Get(ctx context.Context, req *request.GetInterviewRequest) (*response.InterviewDetailsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.InterviewDetailsResponse), args.Error(1)
}

// MockDecisionService мок сервиса голосов
type MockDecisionService struct {
	mock.Mock
}

func (m *MockDecisionService) RecordDecision(ctx context.Context, req *request.RecordDecisionRequest) (*response.RecordDecisionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.RecordDecisionResponse), args.Error(1)
}

func (m *MockDecisionService) ListDecisions(ctx context.Context, req *request.ListDecisionsRequest) (*response.DecisionListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.DecisionListResponse), args.Error(1)
}

func interviewResponse() *response.InterviewResponse {
	now := time.Now().Format(time.RFC3339)
	return &response.InterviewResponse{
		InterviewId:    testInterviewId,
		StudentId:      testStudentId,
		ApplicationId:  testAppId,
		ScheduledAt:    now,
		Status:         "SCHEDULED",
		PanelMemberIds: []string{testMemberId},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestInterviewHandler_Schedule_Success(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	mockService.On("Schedule", mock.Anything, mock.MatchedBy(func(r *request.ScheduleRequest) bool {
		return r.ApplicationId == testAppId && len(r.BoardMemberIds) == 1
	})).Return(interviewResponse(), nil)

	body, _ := json.Marshal(request.ScheduleRequest{
		StudentId:      testStudentId,
		ApplicationId:  testAppId,
		ScheduledAt:    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		BoardMemberIds: []string{testMemberId},
	})
	req := httptest.NewRequest(http.MethodPost, "/interviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Schedule(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestInterviewHandler_Schedule_EmptyPanel(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	body, _ := json.Marshal(request.ScheduleRequest{
		StudentId:     testStudentId,
		ApplicationId: testAppId,
		ScheduledAt:   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	req := httptest.NewRequest(http.MethodPost, "/interviews", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Schedule(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	assert.NoError(t, err)
	assert.Equal(t, "INVALID_INPUT", errResp.Error.Code)
	mockService.AssertNotCalled(t, "Schedule")
}

func TestInterviewHandler_Schedule_Conflict(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	mockService.On("Schedule", mock.Anything, mock.Anything).
		Return(nil, service.WrapError(service.ErrConflict, errors.New("application "+testAppId+" already has interview")))

	body, _ := json.Marshal(request.ScheduleRequest{
		StudentId:      testStudentId,
		ApplicationId:  testAppId,
		ScheduledAt:    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		BoardMemberIds: []string{testMemberId},
	})
	req := httptest.NewRequest(http.MethodPost, "/interviews", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Schedule(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	assert.NoError(t, err)
	assert.Equal(t, "CONFLICT", errResp.Error.Code)
}

func TestInterviewHandler_RecordDecision_Success(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	now := time.Now().Format(time.RFC3339)
	mockDecisions.On("RecordDecision", mock.Anything, mock.MatchedBy(func(r *request.RecordDecisionRequest) bool {
		return r.InterviewId == testInterviewId && r.Decision == "APPROVE"
	})).Return(&response.RecordDecisionResponse{
		Decision: &response.DecisionResponse{
			InterviewId:   testInterviewId,
			BoardMemberId: testMemberId,
			Decision:      "APPROVE",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		PanelCompleted:    true,
		Outcome:           "BOARD_APPROVED",
		ApplicationStatus: "BOARD_APPROVED",
	}, nil)

	body, _ := json.Marshal(request.RecordDecisionRequest{
		BoardMemberId: testMemberId,
		Decision:      "APPROVE",
	})
	req := httptest.NewRequest(http.MethodPost, "/interviews/"+testInterviewId+"/decision", bytes.NewReader(body))
	req = withURLParam(req, "id", testInterviewId)
	w := httptest.NewRecorder()

	handler.RecordDecision(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response.RecordDecisionResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.PanelCompleted)
	assert.Equal(t, "BOARD_APPROVED", resp.Outcome)
	mockDecisions.AssertExpectations(t)
}

func TestInterviewHandler_RecordDecision_Forbidden(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	mockDecisions.On("RecordDecision", mock.Anything, mock.Anything).
		Return(nil, service.WrapError(service.ErrForbidden, errors.New("board member "+testMemberId+", interview "+testInterviewId)))

	body, _ := json.Marshal(request.RecordDecisionRequest{
		BoardMemberId: testMemberId,
		Decision:      "APPROVE",
	})
	req := httptest.NewRequest(http.MethodPost, "/interviews/"+testInterviewId+"/decision", bytes.NewReader(body))
	req = withURLParam(req, "id", testInterviewId)
	w := httptest.NewRecorder()

	handler.RecordDecision(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockDecisions.AssertExpectations(t)
}

func TestInterviewHandler_ListDecisions_Success(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	now := time.Now().Format(time.RFC3339)
	mockDecisions.On("ListDecisions", mock.Anything, mock.MatchedBy(func(r *request.ListDecisionsRequest) bool {
		return r.InterviewId == testInterviewId
	})).Return(&response.DecisionListResponse{
		Decisions: []*response.DecisionResponse{
			{InterviewId: testInterviewId, BoardMemberId: testMemberId, Decision: "APPROVE", CreatedAt: now, UpdatedAt: now},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/interviews/"+testInterviewId+"/decisions", nil)
	req = withURLParam(req, "id", testInterviewId)
	w := httptest.NewRecorder()

	handler.ListDecisions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response.DecisionListResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Len(t, resp.Decisions, 1)
	mockDecisions.AssertExpectations(t)
}

func TestInterviewHandler_Get_Success(t *testing.T) {
	logger := zap.NewNop()
	mockService := new(MockInterviewService)
	mockDecisions := new(MockDecisionService)
	handler := NewInterviewHandler(mockService, mockDecisions, logger)

	mockService.On("Get", mock.Anything, mock.Anything).Return(&response.InterviewDetailsResponse{
		Interview: interviewResponse(),
		Decisions: []*response.DecisionResponse{},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/interviews/"+testInterviewId, nil)
	req = withURLParam(req, "id", testInterviewId)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp response.InterviewDetailsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, testInterviewId, resp.Interview.InterviewId)
	mockService.AssertExpectations(t)
}
