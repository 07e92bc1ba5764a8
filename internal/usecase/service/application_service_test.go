package service

import (
	"context"
	"testing"
	"time"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/eduaid/review-service/internal/infrastructure/models/dto"
	"github.com/eduaid/review-service/internal/infrastructure/models/result"
	"github.com/eduaid/review-service/internal/infrastructure/repository"
	"github.com/eduaid/review-service/internal/notify"
	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testAppId     = "6f1b24a0-58a7-4f4f-9d64-1b6d2c6f1a01"
	testStudentId = "7c2d35b1-69b8-4a50-8e75-2c7e3d7f2b02"
)

// MockApplicationRepository мок репозитория для тестов
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Submit(ctx context.Context, applicationId string) (*result.ApplicationResult, error) {
	args := m.Called(ctx, applicationId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*result.ApplicationResult), args.Error(1)
}

func (m *MockApplicationRepository) SetStatus(ctx context.Context, d *dto.SetStatusDTO) (*result.ApplicationResult, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*result.ApplicationResult), args.Error(1)
}

func (m *MockApplicationRepository) GetById(ctx context.Context, applicationId string) (*result.ApplicationResult, error) {
	args := m.Called(ctx, applicationId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*result.ApplicationResult), args.Error(1)
}

// RecordingDispatcher собирает события вместо отправки
type RecordingDispatcher struct {
	Events []notify.Event
}

func (d *RecordingDispatcher) Dispatch(ctx context.Context, e notify.Event) {
	d.Events = append(d.Events, e)
}

func appResult(status string) *result.ApplicationResult {
	now := time.Now()
	return &result.ApplicationResult{
		Id:        testAppId,
		StudentId: testStudentId,
		Status:    domain.ApplicationStatus(status),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestApplicationService_Submit_Success(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	dispatcher := &RecordingDispatcher{}
	service := NewApplicationService(mockRepo, dispatcher, logger)

	now := time.Now()
	res := appResult("PENDING")
	res.SubmittedAt = &now

	mockRepo.On("Submit", mock.Anything, testAppId).Return(res, nil)

	resp, err := service.Submit(context.Background(), &request.SubmitRequest{ApplicationId: testAppId})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, testAppId, resp.ApplicationId)
	assert.Equal(t, "PENDING", resp.Status)
	assert.NotNil(t, resp.SubmittedAt)

	// Студент уведомлён о смене статуса
	assert.Len(t, dispatcher.Events, 1)
	assert.Equal(t, notify.EventStatusChanged, dispatcher.Events[0].Name)
	assert.Equal(t, testStudentId, dispatcher.Events[0].RecipientId)
	mockRepo.AssertExpectations(t)
}

func TestApplicationService_Submit_NotDraft(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	service := NewApplicationService(mockRepo, &RecordingDispatcher{}, logger)

	mockRepo.On("Submit", mock.Anything, testAppId).Return(nil, repository.ErrStateConflict)

	resp, err := service.Submit(context.Background(), &request.SubmitRequest{ApplicationId: testAppId})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestApplicationService_Submit_NotFound(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	service := NewApplicationService(mockRepo, &RecordingDispatcher{}, logger)

	mockRepo.On("Submit", mock.Anything, testAppId).Return(nil, repository.ErrNotFound)

	resp, err := service.Submit(context.Background(), &request.SubmitRequest{ApplicationId: testAppId})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestApplicationService_Submit_BadId(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	service := NewApplicationService(mockRepo, &RecordingDispatcher{}, logger)

	resp, err := service.Submit(context.Background(), &request.SubmitRequest{ApplicationId: "not-a-uuid"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Submit")
}

func TestApplicationService_SetStatus_Approved_ActivatesStudent(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	dispatcher := &RecordingDispatcher{}
	service := NewApplicationService(mockRepo, dispatcher, logger)

	mockRepo.On("SetStatus", mock.Anything, mock.MatchedBy(func(d *dto.SetStatusDTO) bool {
		return d.Id == testAppId && string(d.Status) == "APPROVED"
	})).Return(appResult("APPROVED"), nil)

	resp, err := service.SetStatus(context.Background(), &request.SetStatusRequest{
		ApplicationId: testAppId,
		Status:        "APPROVED",
	})

	assert.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)

	// Смена статуса плюс активация студента
	assert.Len(t, dispatcher.Events, 2)
	assert.Equal(t, notify.EventStatusChanged, dispatcher.Events[0].Name)
	assert.Equal(t, notify.EventStudentActivated, dispatcher.Events[1].Name)
	assert.Equal(t, testStudentId, dispatcher.Events[1].RecipientId)
	mockRepo.AssertExpectations(t)
}

func TestApplicationService_SetStatus_PipelineStatusRejected(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	service := NewApplicationService(mockRepo, &RecordingDispatcher{}, logger)

	// Статусы конвейера интервью нельзя выставить руками
	for _, status := range []string{"INTERVIEW_SCHEDULED", "BOARD_APPROVED", "INTERVIEW_COMPLETED", "DRAFT", "UNKNOWN"} {
		resp, err := service.SetStatus(context.Background(), &request.SetStatusRequest{
			ApplicationId: testAppId,
			Status:        status,
		})

		assert.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	}
	mockRepo.AssertNotCalled(t, "SetStatus")
}

func TestApplicationService_Get_NotFound(t *testing.T) {
	logger := zap.NewNop()
	mockRepo := new(MockApplicationRepository)
	service := NewApplicationService(mockRepo, &RecordingDispatcher{}, logger)

	mockRepo.On("GetById", mock.Anything, testAppId).Return(nil, repository.ErrNotFound)

	resp, err := service.Get(context.Background(), &request.GetApplicationRequest{ApplicationId: testAppId})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	mockRepo.AssertExpectations(t)
}
