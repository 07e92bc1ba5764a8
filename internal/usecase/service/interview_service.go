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
	scheduleError        = errors.New("schedule interview error")
	updateInterviewError = errors.New("update interview error")
	getInterviewError    = errors.New("get interview error")
)

// Интерфейс репозитория
type InterviewRepository interface {
	Schedule(ctx context.Context, d *dto.ScheduleInterviewDTO) (*result.InterviewResult, error)
	Update(ctx context.Context, d *dto.UpdateInterviewDTO) (*result.InterviewResult, error)
	Get(ctx context.Context, interviewId string) (*result.InterviewDetailsResult, error)
}

// Справочник членов комиссии, владеет им внешний административный слой
type BoardDirectory interface {
	SelectActiveBoardMembers(ctx context.Context, boardMemberIds []string) ([]*domain.BoardMember, error)
}

type InterviewService struct {
	repo     InterviewRepository
	boards   BoardDirectory
	notifier notify.Dispatcher
	log      *zap.Logger
}

func NewInterviewService(repo InterviewRepository, boards BoardDirectory, notifier notify.Dispatcher, log *zap.Logger) *InterviewService {
	return &InterviewService{
		repo:     repo,
		boards:   boards,
		notifier: notifier,
		log:      log,
	}
}

// Schedule создаёт интервью с панелью атомарно: либо интервью,
// состав панели и статус заявки записаны вместе, либо ничего
func (s *InterviewService) Schedule(ctx context.Context, req *request.ScheduleRequest) (*response.InterviewResponse, error) {
	s.log.Info("schedule request accepted",
		zap.String("application_id", req.ApplicationId),
		zap.Int("panel_size", len(req.BoardMemberIds)),
	)

	// Проверяем корректность идентификаторов
	applicationId, err := normalizeID(req.ApplicationId, "application_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	studentId, err := normalizeID(req.StudentId, "student_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	boardMemberIds, err := normalizePanel(req.BoardMemberIds)
	if err != nil {
		return nil, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, fmt.Errorf("scheduled_at must be RFC3339, got %q", req.ScheduledAt))
	}

	// Собираем dto
	d := &dto.ScheduleInterviewDTO{
		Id:             uuid.NewString(),
		StudentId:      studentId,
		ApplicationId:  applicationId,
		ScheduledAt:    scheduledAt,
		MeetingLink:    req.MeetingLink,
		Notes:          req.Notes,
		BoardMemberIds: boardMemberIds,
	}

	// Запрос в бд
	res, err := s.repo.Schedule(ctx, d)
	if err != nil {
		s.log.Error("failed to schedule interview",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrApplicationNotFound, err)
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, WrapError(ErrConflict, err)
		}
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidReference, err)
		}

		// Неизвестная ошибка
		return nil, fmt.Errorf("%w: %w", scheduleError, err)
	}

	// Уведомления студенту и каждому члену панели
	s.notifier.Dispatch(ctx, notify.Event{
		Name:          notify.EventInterviewScheduled,
		ApplicationId: res.ApplicationId,
		InterviewId:   res.Id,
		RecipientRole: string(domain.RoleStudent),
		RecipientId:   res.StudentId,
		Detail:        res.ScheduledAt.Format(time.RFC3339),
	})
	for _, memberId := range res.PanelMemberIds {
		s.notifier.Dispatch(ctx, notify.Event{
			Name:          notify.EventInterviewScheduled,
			ApplicationId: res.ApplicationId,
			InterviewId:   res.Id,
			RecipientRole: string(domain.RoleAdmin),
			RecipientId:   memberId,
			Detail:        res.ScheduledAt.Format(time.RFC3339),
		})
	}

	s.log.Info("interview scheduled",
		zap.String("interview_id", res.Id),
		zap.String("application_id", res.ApplicationId),
	)

	// Ответ
	return toInterviewResponse(res), nil
}

// Update правит время, ссылку, заметки, статус и состав панели;
// nil-поля остаются без изменений
func (s *InterviewService) Update(ctx context.Context, req *request.UpdateInterviewRequest) (*response.InterviewResponse, error) {
	s.log.Info("update interview request accepted", zap.String("interview_id", req.InterviewId))

	// Проверяем корректность идентификатора
	interviewId, err := normalizeID(req.InterviewId, "interview_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Собираем dto
	d := &dto.UpdateInterviewDTO{
		Id:          interviewId,
		MeetingLink: req.MeetingLink,
		Notes:       req.Notes,
	}

	if req.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return nil, WrapError(ErrInvalidInput, fmt.Errorf("scheduled_at must be RFC3339, got %q", *req.ScheduledAt))
		}
		d.ScheduledAt = &scheduledAt
	}

	if req.Status != nil {
		status, ok := domain.ParseInterviewStatus(*req.Status)
		if !ok {
			return nil, WrapError(ErrInvalidInput, fmt.Errorf("status must be SCHEDULED or COMPLETED, got %q", *req.Status))
		}
		d.Status = &status
	}

	if req.BoardMemberIds != nil {
		boardMemberIds, err := normalizePanel(req.BoardMemberIds)
		if err != nil {
			return nil, err
		}
		d.BoardMemberIds = boardMemberIds
	}

	// Запрос в бд
	res, err := s.repo.Update(ctx, d)
	if err != nil {
		s.log.Error("failed to update interview", zap.String("interview_id", interviewId), zap.Error(err))

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrInterviewNotFound, fmt.Errorf("interview %s", interviewId))
		}
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, WrapError(ErrInvalidState, err)
		}
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidReference, err)
		}

		// Неизвестная ошибка
		return nil, fmt.Errorf("%w: %w", updateInterviewError, err)
	}

	s.log.Info("interview updated", zap.String("interview_id", res.Id))

	// Ответ
	return toInterviewResponse(res), nil
}

func (s *InterviewService) Get(ctx context.Context, req *request.GetInterviewRequest) (*response.InterviewDetailsResponse, error) {
	// Проверяем корректность идентификатора
	interviewId, err := normalizeID(req.InterviewId, "interview_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Запрос в бд
	res, err := s.repo.Get(ctx, interviewId)
	if err != nil {
		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrInterviewNotFound, fmt.Errorf("interview %s", interviewId))
		}
		return nil, fmt.Errorf("%w: %w", getInterviewError, err)
	}

	// Ответ
	decisions := make([]*response.DecisionResponse, 0, len(res.Decisions))
	for _, row := range res.Decisions {
		decisions = append(decisions, toDecisionResponse(row))
	}

	// Детали панели не критичны для ответа, при сбое справочника
	// отдаём интервью без них
	panel := make([]*response.PanelMemberResponse, 0, len(res.Interview.PanelMemberIds))
	members, err := s.boards.SelectActiveBoardMembers(ctx, res.Interview.PanelMemberIds)
	if err != nil {
		s.log.Warn("failed to load panel members",
			zap.String("interview_id", interviewId),
			zap.Error(err),
		)
	}
	for _, member := range members {
		panel = append(panel, &response.PanelMemberResponse{
			BoardMemberId: member.Id,
			Name:          member.Name,
			Title:         member.Title,
		})
	}

	return &response.InterviewDetailsResponse{
		Interview: toInterviewResponse(res.Interview),
		Panel:     panel,
		Decisions: decisions,
	}, nil
}

// вспомогательная функция: панель непуста, без дубликатов, все id валидны
func normalizePanel(boardMemberIds []string) ([]string, error) {
	if len(boardMemberIds) == 0 {
		return nil, WrapError(ErrInvalidInput, errors.New("board_member_ids must not be empty"))
	}

	seen := make(map[string]struct{}, len(boardMemberIds))
	normalized := make([]string, 0, len(boardMemberIds))
	for _, raw := range boardMemberIds {
		id, err := normalizeID(raw, "board_member_id")
		if err != nil {
			return nil, WrapError(ErrInvalidInput, err)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}

	return normalized, nil
}

// вспомогательная функция сборки ответа
func toInterviewResponse(res *result.InterviewResult) *response.InterviewResponse {
	return &response.InterviewResponse{
		InterviewId:    res.Id,
		StudentId:      res.StudentId,
		ApplicationId:  res.ApplicationId,
		ScheduledAt:    res.ScheduledAt.Format(time.RFC3339),
		MeetingLink:    res.MeetingLink,
		Notes:          res.Notes,
		Status:         string(res.Status),
		PanelMemberIds: res.PanelMemberIds,
		CreatedAt:      res.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      res.UpdatedAt.Format(time.RFC3339),
	}
}

func toDecisionResponse(row *result.DecisionRow) *response.DecisionResponse {
	return &response.DecisionResponse{
		InterviewId:   row.InterviewId,
		BoardMemberId: row.BoardMemberId,
		Decision:      string(row.Decision),
		Comments:      row.Comments,
		CreatedAt:     row.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     row.UpdatedAt.Format(time.RFC3339),
	}
}
