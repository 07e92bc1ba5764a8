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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	assignError       = errors.New("assign review error")
	reassignError     = errors.New("reassign review error")
	completeError     = errors.New("complete review error")
	unassignError     = errors.New("unassign review error")
	listReviewsError  = errors.New("list reviews error")
	notifyAdminsError = errors.New("select admin recipients error")
)

// Интерфейс репозитория
type ReviewRepository interface {
	FindByKey(ctx context.Context, applicationId, officerId string, taskType *string) (*result.ReviewResult, error)
	Create(ctx context.Context, d *dto.AssignReviewDTO) (*result.ReviewResult, error)
	GetById(ctx context.Context, reviewId string) (*result.ReviewResult, error)
	Reassign(ctx context.Context, d *dto.ReassignReviewDTO) (*result.ReviewResult, error)
	Complete(ctx context.Context, d *dto.CompleteReviewDTO) (*result.ReviewResult, error)
	Delete(ctx context.Context, reviewId string) error
	List(ctx context.Context, officerId *string) ([]*result.ReviewResult, error)
}

// Справочник пользователей: проверка исполнителей и выбор получателей уведомлений
type UserDirectory interface {
	GetUser(ctx context.Context, userId string) (*domain.User, error)
	SelectAdminIds(ctx context.Context) ([]string, error)
}

type ReviewService struct {
	repo     ReviewRepository
	apps     ApplicationRepository
	users    UserDirectory
	notifier notify.Dispatcher
	log      *zap.Logger
}

func NewReviewService(
	repo ReviewRepository,
	apps ApplicationRepository,
	users UserDirectory,
	notifier notify.Dispatcher,
	log *zap.Logger,
) *ReviewService {
	return &ReviewService{
		repo:     repo,
		apps:     apps,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// Assign назначает выездную проверку; тройка
// (application, officer, task_type) должна быть уникальной
func (s *ReviewService) Assign(ctx context.Context, req *request.AssignRequest) (*response.ReviewResponse, error) {
	s.log.Info("assign request accepted",
		zap.String("application_id", req.ApplicationId),
		zap.String("officer_id", req.OfficerId),
	)

	// Проверяем корректность идентификаторов
	applicationId, err := normalizeID(req.ApplicationId, "application_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	officerId, err := normalizeID(req.OfficerId, "officer_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	studentId, err := normalizeID(req.StudentId, "student_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Заявка должна существовать
	app, err := s.apps.GetById(ctx, applicationId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrInvalidReference, fmt.Errorf("application %s", applicationId))
		}
		return nil, fmt.Errorf("%w: %w", assignError, err)
	}

	// Исполнитель должен быть активным выездным инспектором
	if err := s.checkActiveOfficer(ctx, officerId); err != nil {
		return nil, err
	}

	// Точный повтор тройки запрещён
	existing, err := s.repo.FindByKey(ctx, applicationId, officerId, req.TaskType)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", assignError, err)
	}
	if existing != nil {
		return nil, WrapError(ErrDuplicateAssignment,
			fmt.Errorf("officer %s already assigned to application %s with this task type", officerId, applicationId))
	}

	// Собираем dto
	d := &dto.AssignReviewDTO{
		Id:            uuid.NewString(),
		ApplicationId: applicationId,
		StudentId:     studentId,
		OfficerId:     officerId,
		TaskType:      req.TaskType,
	}

	// Запрос в бд
	res, err := s.repo.Create(ctx, d)
	if err != nil {
		s.log.Error("failed to create review",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)

		// Маппим ошибки: гонка на уникальном индексе тоже дубликат
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, WrapError(ErrDuplicateAssignment,
				fmt.Errorf("officer %s already assigned to application %s with this task type", officerId, applicationId))
		}
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidReference, err)
		}
		return nil, fmt.Errorf("%w: %w", assignError, err)
	}

	// Уведомления инспектору и студенту, сбой не откатывает назначение
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventReviewAssigned,
		ApplicationId: res.ApplicationId,
		ReviewId:      res.Id,
		RecipientRole: string(domain.RoleFieldOfficer),
		RecipientId:   res.OfficerId,
	})
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventReviewAssigned,
		ApplicationId: res.ApplicationId,
		ReviewId:      res.Id,
		RecipientRole: string(domain.RoleStudent),
		RecipientId:   app.StudentId,
	})

	s.log.Info("review assigned",
		zap.String("review_id", res.Id),
		zap.String("officer_id", res.OfficerId),
	)

	// Ответ
	return toReviewResponse(res), nil
}

// Reassign переводит проверку на другого инспектора; проверка дубликата
// выполняется заново для новой тройки
func (s *ReviewService) Reassign(ctx context.Context, req *request.ReassignRequest) (*response.ReviewResponse, error) {
	s.log.Info("reassign request accepted",
		zap.String("review_id", req.ReviewId),
		zap.String("new_officer_id", req.NewOfficerId),
	)

	// Проверяем корректность идентификаторов
	reviewId, err := normalizeID(req.ReviewId, "review_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	newOfficerId, err := normalizeID(req.NewOfficerId, "new_officer_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Текущая проверка
	current, err := s.repo.GetById(ctx, reviewId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrReviewNotFound, fmt.Errorf("review %s", reviewId))
		}
		return nil, fmt.Errorf("%w: %w", reassignError, err)
	}

	// Новый исполнитель должен быть активным выездным инспектором
	if err := s.checkActiveOfficer(ctx, newOfficerId); err != nil {
		return nil, err
	}

	// Новая тройка не должна совпадать с существующей проверкой
	existing, err := s.repo.FindByKey(ctx, current.ApplicationId, newOfficerId, current.TaskType)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", reassignError, err)
	}
	if existing != nil {
		return nil, WrapError(ErrDuplicateAssignment,
			fmt.Errorf("officer %s already assigned to application %s with this task type", newOfficerId, current.ApplicationId))
	}

	// История переводов остаётся в заметках
	note := fmt.Sprintf("reassigned from %s at %s", current.OfficerId, time.Now().UTC().Format(time.RFC3339))
	if current.Notes != nil && *current.Notes != "" {
		note = *current.Notes + "\n" + note
	}

	// Собираем dto
	d := &dto.ReassignReviewDTO{
		Id:           reviewId,
		NewOfficerId: newOfficerId,
		Notes:        &note,
	}

	// Запрос в бд
	res, err := s.repo.Reassign(ctx, d)
	if err != nil {
		s.log.Error("failed to reassign review", zap.String("review_id", reviewId), zap.Error(err))

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrReviewNotFound, fmt.Errorf("review %s", reviewId))
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, WrapError(ErrDuplicateAssignment,
				fmt.Errorf("officer %s already assigned to application %s with this task type", newOfficerId, current.ApplicationId))
		}
		return nil, fmt.Errorf("%w: %w", reassignError, err)
	}

	// Уведомляем нового и прежнего исполнителей
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventReviewReassigned,
		ApplicationId: res.ApplicationId,
		ReviewId:      res.Id,
		RecipientRole: string(domain.RoleFieldOfficer),
		RecipientId:   res.OfficerId,
	})
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventReviewUnassigned,
		ApplicationId: res.ApplicationId,
		ReviewId:      res.Id,
		RecipientRole: string(domain.RoleFieldOfficer),
		RecipientId:   current.OfficerId,
	})

	// Ответ
	return toReviewResponse(res), nil
}

// Complete фиксирует результаты проверки и уведомляет студента и администраторов
func (s *ReviewService) Complete(ctx context.Context, req *request.CompleteRequest) (*response.ReviewResponse, error) {
	s.log.Info("complete request accepted", zap.String("review_id", req.ReviewId))

	// Проверяем корректность идентификатора
	reviewId, err := normalizeID(req.ReviewId, "review_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Собираем dto
	d := &dto.CompleteReviewDTO{
		Id:             reviewId,
		Score:          req.Score,
		Flags:          req.Flags,
		Recommendation: req.Recommendation,
		Notes:          req.Notes,
	}

	// Запрос в бд
	res, err := s.repo.Complete(ctx, d)
	if err != nil {
		s.log.Error("failed to complete review", zap.String("review_id", reviewId), zap.Error(err))

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrReviewNotFound, fmt.Errorf("review %s", reviewId))
		}
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("%w: %w", completeError, err)
	}

	// Студент и каждый администратор получают уведомление о завершении
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventReviewCompleted,
		ApplicationId: res.ApplicationId,
		ReviewId:      res.Id,
		RecipientRole: string(domain.RoleStudent),
		RecipientId:   res.StudentId,
	})

	adminIds, err := s.users.SelectAdminIds(ctx)
	if err != nil {
		// Рассылка администраторам best-effort
		s.log.Warn("admin notification skipped", zap.Error(fmt.Errorf("%w: %w", notifyAdminsError, err)))
	}
	for _, adminId := range adminIds {
		s.notifier.Dispatch(ctx, notify.Event{
			Name:          notify.EventReviewCompleted,
			ApplicationId: res.ApplicationId,
			ReviewId:      res.Id,
			RecipientRole: string(domain.RoleAdmin),
			RecipientId:   adminId,
		})
	}

	s.log.Info("review completed", zap.String("review_id", res.Id))

	// Ответ
	return toReviewResponse(res), nil
}

// Unassign снимает назначение полностью
func (s *ReviewService) Unassign(ctx context.Context, req *request.UnassignRequest) error {
	s.log.Info("unassign request accepted", zap.String("review_id", req.ReviewId))

	// Проверяем корректность идентификатора
	reviewId, err := normalizeID(req.ReviewId, "review_id")
	if err != nil {
		return WrapError(ErrInvalidInput, err)
	}

	// Нужна для уведомления снятому исполнителю
	current, err := s.repo.GetById(ctx, reviewId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return WrapError(ErrReviewNotFound, fmt.Errorf("review %s", reviewId))
		}
		return fmt.Errorf("%w: %w", unassignError, err)
	}

	// Запрос в бд
	if err := s.repo.Delete(ctx, reviewId); err != nil {
		s.log.Error("failed to delete review", zap.String("review_id", reviewId), zap.Error(err))

		if errors.Is(err, repository.ErrNotFound) {
			return WrapError(ErrReviewNotFound, fmt.Errorf("review %s", reviewId))
		}
		return fmt.Errorf("%w: %w", unassignError, err)
	}

	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventReviewUnassigned,
		ApplicationId: current.ApplicationId,
		ReviewId:      current.Id,
		RecipientRole: string(domain.RoleFieldOfficer),
		RecipientId:   current.OfficerId,
	})

	return nil
}

// List отдаёт проверки в зависимости от роли вызывающего:
// администратор видит все, инспектор только свои
func (s *ReviewService) List(ctx context.Context, actor domain.Actor) (*response.ReviewListResponse, error) {
	var officerId *string

	switch actor.Role {
	case domain.RoleAdmin:
		// все проверки
	case domain.RoleFieldOfficer:
		id, err := normalizeID(actor.UserId, "actor_id")
		if err != nil {
			return nil, WrapError(ErrInvalidInput, err)
		}
		officerId = &id
	default:
		return nil, WrapError(ErrForbidden, fmt.Errorf("role %s cannot list field reviews", actor.Role))
	}

	// Запрос в бд
	rows, err := s.repo.List(ctx, officerId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", listReviewsError, err)
	}

	// Ответ
	items := make([]*response.ReviewResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toReviewResponse(row))
	}

	return &response.ReviewListResponse{Reviews: items}, nil
}

// вспомогательная функция: исполнитель существует, активен и является инспектором
func (s *ReviewService) checkActiveOfficer(ctx context.Context, officerId string) error {
	user, err := s.users.GetUser(ctx, officerId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return WrapError(ErrInvalidReference, fmt.Errorf("officer %s not found", officerId))
		}
		return fmt.Errorf("%w: %w", assignError, err)
	}
	if user.Role != domain.RoleFieldOfficer || !user.IsActive {
		return WrapError(ErrInvalidReference, fmt.Errorf("officer %s is not an active field officer", officerId))
	}
	return nil
}

// вспомогательная функция сборки ответа
func toReviewResponse(res *result.ReviewResult) *response.ReviewResponse {
	return &response.ReviewResponse{
		ReviewId:       res.Id,
		ApplicationId:  res.ApplicationId,
		StudentId:      res.StudentId,
		OfficerId:      res.OfficerId,
		TaskType:       res.TaskType,
		Status:         string(res.Status),
		Score:          res.Score,
		Flags:          res.Flags,
		Recommendation: res.Recommendation,
		Notes:          res.Notes,
		CreatedAt:      res.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      res.UpdatedAt.Format(time.RFC3339),
	}
}
