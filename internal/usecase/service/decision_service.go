package service

import (
	"context"
	"errors"
	"fmt"

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
	recordDecisionError = errors.New("record decision error")
	listDecisionsError  = errors.New("list decisions error")
)

// Интерфейс репозитория
type DecisionRepository interface {
	RecordDecision(ctx context.Context, d *dto.RecordDecisionDTO) (*result.DecisionResult, error)
	ListDecisions(ctx context.Context, interviewId string) ([]*result.DecisionRow, error)
}

type DecisionService struct {
	repo     DecisionRepository
	notifier notify.Dispatcher
	log      *zap.Logger
}

func NewDecisionService(repo DecisionRepository, notifier notify.Dispatcher, log *zap.Logger) *DecisionService {
	return &DecisionService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// RecordDecision записывает или обновляет голос члена панели. Если после
// записи проголосовали все, итог и новый статус заявки фиксируются
// той же транзакцией, поэтому завершение срабатывает ровно один раз
func (s *DecisionService) RecordDecision(ctx context.Context, req *request.RecordDecisionRequest) (*response.RecordDecisionResponse, error) {
	s.log.Info("decision request accepted",
		zap.String("interview_id", req.InterviewId),
		zap.String("board_member_id", req.BoardMemberId),
	)

	// Проверяем корректность идентификаторов
	interviewId, err := normalizeID(req.InterviewId, "interview_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	boardMemberId, err := normalizeID(req.BoardMemberId, "board_member_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	decision, ok := domain.ParseDecision(req.Decision)
	if !ok {
		return nil, WrapError(ErrInvalidInput, fmt.Errorf("decision must be APPROVE, REJECT or ABSTAIN, got %q", req.Decision))
	}

	// Собираем dto
	d := &dto.RecordDecisionDTO{
		InterviewId:   interviewId,
		BoardMemberId: boardMemberId,
		Decision:      decision,
		Comments:      req.Comments,
	}

	// Запрос в бд
	res, err := s.repo.RecordDecision(ctx, d)
	if err != nil {
		s.log.Error("failed to record decision",
			zap.String("interview_id", interviewId),
			zap.String("board_member_id", boardMemberId),
			zap.Error(err),
		)

		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrInterviewNotFound, fmt.Errorf("interview %s", interviewId))
		}
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, WrapError(ErrInvalidState, err)
		}
		if errors.Is(err, repository.ErrNotPanelMember) {
			return nil, WrapError(ErrForbidden, err)
		}

		// Неизвестная ошибка
		return nil, fmt.Errorf("%w: %w", recordDecisionError, err)
	}

	resp := &response.RecordDecisionResponse{
		Decision:       toDecisionResponse(res.Row),
		PanelCompleted: res.Completed,
	}

	// Завершение панели меняет статус заявки, студент узнаёт об этом сразу
	if res.Completed {
		resp.Outcome = string(res.Outcome)
		resp.ApplicationStatus = string(res.Outcome)

		s.notifier.Dispatch(ctx, notify.Event{
			Name:          notify.EventStatusChanged,
			ApplicationId: res.ApplicationId,
			InterviewId:   interviewId,
			RecipientRole: string(domain.RoleStudent),
			RecipientId:   res.StudentId,
			Detail:        string(res.Outcome),
		})

		s.log.Info("panel voting completed",
			zap.String("interview_id", interviewId),
			zap.Int("approvals", res.Approvals),
			zap.Int("rejections", res.Rejections),
			zap.Int("panel_size", res.PanelSize),
			zap.String("outcome", string(res.Outcome)),
		)
	}

	// Ответ
	return resp, nil
}

// ListDecisions отдаёт все голоса интервью, свежие первыми
func (s *DecisionService) ListDecisions(ctx context.Context, req *request.ListDecisionsRequest) (*response.DecisionListResponse, error) {
	// Проверяем корректность идентификатора
	interviewId, err := normalizeID(req.InterviewId, "interview_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	// Запрос в бд
	rows, err := s.repo.ListDecisions(ctx, interviewId)
	if err != nil {
		// Маппим ошибки
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrInterviewNotFound, fmt.Errorf("interview %s", interviewId))
		}
		return nil, fmt.Errorf("%w: %w", listDecisionsError, err)
	}

	// Ответ
	decisions := make([]*response.DecisionResponse, 0, len(rows))
	for _, row := range rows {
		decisions = append(decisions, toDecisionResponse(row))
	}

	return &response.DecisionListResponse{Decisions: decisions}, nil
}
