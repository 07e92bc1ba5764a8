package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/eduaid/review-service/internal/infrastructure/models/dto"
	"github.com/eduaid/review-service/internal/infrastructure/models/result"
	"github.com/eduaid/review-service/internal/infrastructure/repository"
	"github.com/eduaid/review-service/internal/notify"
	"github.com/eduaid/review-service/internal/transport/dto/request"
	"github.com/eduaid/review-service/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	submitError    = errors.New("submit application error")
	setStatusError = errors.New("set application status error")
	getAppError    = errors.New("get application error")
)

// Интерфейс репозитория
type ApplicationRepository interface {
	Submit(ctx context.Context, applicationId string) (*result.ApplicationResult, error)
	SetStatus(ctx context.Context, d *dto.SetStatusDTO) (*result.ApplicationResult, error)
	GetById(ctx context.Context, applicationId string) (*result.ApplicationResult, error)
}

type ApplicationService struct {
	repo     ApplicationRepository
	notifier notify.Dispatcher
	log      *zap.Logger
}

func NewApplicationService(repo ApplicationRepository, notifier notify.Dispatcher, log *zap.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Submit переводит заявку DRAFT -> PENDING
func (s *ApplicationService) Submit(ctx context.Context, req *request.SubmitRequest) (*response.ApplicationResponse, error) {
	s.log.Info("submit request accepted", zap.String("application_id", req.ApplicationId))

	// Проверяем корректность идентификатора
	applicationId, err := normalizeID(req.ApplicationId, "application_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Запрос в бд
	res, err := s.repo.Submit(ctx, applicationId)
	if err != nil {
		s.log.Error("failed to submit application",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrApplicationNotFound, fmt.Errorf("application %s", applicationId))
		}
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, WrapError(ErrInvalidState, err)
		}

		// Неизвестная ошибка
		return nil, fmt.Errorf("%w: %w", submitError, err)
	}

	// Уведомление студенту, сбой доставки не влияет на результат
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventStatusChanged,
		ApplicationId: res.Id,
		RecipientRole: string(domain.RoleStudent),
		RecipientId:   res.StudentId,
		Detail:        string(res.Status),
	})

	s.log.Info("application submitted",
		zap.String("application_id", res.Id),
		zap.String("status", string(res.Status)),
	)

	// Ответ
	return toApplicationResponse(res), nil
}

// SetStatus административная смена статуса, разрешены только
// PENDING/PROCESSING/APPROVED/REJECTED
func (s *ApplicationService) SetStatus(ctx context.Context, req *request.SetStatusRequest) (*response.ApplicationResponse, error) {
	s.log.Info("setStatus request accepted",
		zap.String("application_id", req.ApplicationId),
		zap.String("status", req.Status),
	)

	// Проверяем корректность идентификатора
	applicationId, err := normalizeID(req.ApplicationId, "application_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Статус должен быть из закрытого административного набора
	status, ok := domain.ParseApplicationStatus(req.Status)
	if !ok || !status.IsAdminAssignable() {
		return nil, WrapError(ErrInvalidInput, fmt.Errorf("status must be PENDING, PROCESSING, APPROVED or REJECTED, got %q", req.Status))
	}

	// Собираем dto
	d := &dto.SetStatusDTO{
		Id:     applicationId,
		Status: status,
		Notes:  req.Reason,
	}

	// Запрос в бд
	res, err := s.repo.SetStatus(ctx, d)
	if err != nil {
		s.log.Error("failed to set application status",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrApplicationNotFound, fmt.Errorf("application %s", applicationId))
		}

		// Неизвестная ошибка
		return nil, fmt.Errorf("%w: %w", setStatusError, err)
	}

	// Уведомление студенту о смене статуса
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventStatusChanged,
		ApplicationId: res.Id,
		RecipientRole: string(domain.RoleStudent),
		RecipientId:   res.StudentId,
		Detail:        string(res.Status),
	})

	// APPROVED дополнительно активирует студента во внешней системе
	if res.Status == domain.StatusApproved {
		s.notifier.Dispatch(ctx, notify.Event{
			Name:          notify.EventStudentActivated,
			ApplicationId: res.Id,
			RecipientId:   res.StudentId,
		})
	}

	s.log.Info("application status updated",
		zap.String("application_id", res.Id),
		zap.String("status", string(res.Status)),
	)

	// Ответ
	return toApplicationResponse(res), nil
}

func (s *ApplicationService) Get(ctx context.Context, req *request.GetApplicationRequest) (*response.ApplicationResponse, error) {
	// Проверяем корректность идентификатора
	applicationId, err := normalizeID(req.ApplicationId, "application_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Запрос в бд
	res, err := s.repo.GetById(ctx, applicationId)
	if err != nil {
		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrApplicationNotFound, fmt.Errorf("application %s", applicationId))
		}
		return nil, fmt.Errorf("%w: %w", getAppError, err)
	}

	// Ответ
	return toApplicationResponse(res), nil
}

// вспомогательная функция сборки ответа
func toApplicationResponse(res *result.ApplicationResult) *response.ApplicationResponse {
	var submittedAt *string
	if res.SubmittedAt != nil {
		v := res.SubmittedAt.Format(time.RFC3339)
		submittedAt = &v
	}

	return &response.ApplicationResponse{
		ApplicationId: res.Id,
		StudentId:     res.StudentId,
		Status:        string(res.Status),
		Notes:         res.Notes,
		SubmittedAt:   submittedAt,
		CreatedAt:     res.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     res.UpdatedAt.Format(time.RFC3339),
	}
}
