package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/eduaid/review-service/internal/infrastructure/models/dto"
	"github.com/eduaid/review-service/internal/infrastructure/models/result"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	interviewColumns = `
id, student_id, application_id, scheduled_at, meeting_link, notes, status, created_at, updated_at`

	selectInterviewByApplicationQuery = `
SELECT id FROM interviews
WHERE application_id = $1;`

	insertInterviewQuery = `
INSERT INTO interviews (id, student_id, application_id, scheduled_at, meeting_link, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + interviewColumns + `;`

	selectInterviewQuery = `
SELECT ` + interviewColumns + `
FROM interviews
WHERE id = $1;`

	selectInterviewForUpdateQuery = `
SELECT ` + interviewColumns + `
FROM interviews
WHERE id = $1
FOR UPDATE;`

	updateInterviewQuery = `
UPDATE interviews
SET scheduled_at = COALESCE($2, scheduled_at),
    meeting_link = COALESCE($3, meeting_link),
    notes        = COALESCE($4, notes),
    status       = COALESCE($5, status),
    updated_at   = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING ` + interviewColumns + `;`

	completeInterviewQuery = `
UPDATE interviews
SET status     = 'COMPLETED',
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1;`

	selectActivePanelCandidatesQuery = `
SELECT id FROM board_members
WHERE id = ANY($1::uuid[]) AND is_active = TRUE;`

	insertPanelMemberQuery = `
INSERT INTO interview_panel_members (interview_id, board_member_id)
VALUES ($1, $2)
ON CONFLICT (interview_id, board_member_id) DO NOTHING;`

	deletePanelMembersQuery = `
DELETE FROM interview_panel_members
WHERE interview_id = $1;`

	selectPanelMemberQuery = `
SELECT 1 FROM interview_panel_members
WHERE interview_id = $1 AND board_member_id = $2;`

	selectPanelMemberIdsQuery = `
SELECT board_member_id FROM interview_panel_members
WHERE interview_id = $1
ORDER BY added_at ASC;`

	countPanelMembersQuery = `
SELECT COUNT(*) FROM interview_panel_members
WHERE interview_id = $1;`

	upsertDecisionQuery = `
INSERT INTO interview_decisions (interview_id, board_member_id, decision, comments)
VALUES ($1, $2, $3, $4)
ON CONFLICT (interview_id, board_member_id) DO UPDATE
	SET decision   = EXCLUDED.decision,
	    comments   = EXCLUDED.comments,
	    updated_at = CURRENT_TIMESTAMP
RETURNING interview_id, board_member_id, decision, comments, created_at, updated_at;`

	deleteOrphanDecisionsQuery = `
DELETE FROM interview_decisions
WHERE interview_id = $1 AND board_member_id <> ALL($2::uuid[]);`

	countDecisionsQuery = `
SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE decision = 'APPROVE'),
    COUNT(*) FILTER (WHERE decision = 'REJECT')
FROM interview_decisions
WHERE interview_id = $1;`

	selectDecisionsQuery = `
SELECT interview_id, board_member_id, decision, comments, created_at, updated_at
FROM interview_decisions
WHERE interview_id = $1
ORDER BY updated_at DESC;`

	updateApplicationStatusQuery = `
UPDATE applications
SET status     = $2,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1;`

	selectApplicationOwnerForUpdateQuery = `
SELECT id, student_id, status FROM applications
WHERE id = $1
FOR UPDATE;`
)

type InterviewRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewInterviewRepository(db *pgxpool.Pool, log *zap.Logger) *InterviewRepository {
	return &InterviewRepository{
		db:  db,
		log: log,
	}
}

// Schedule атомарно создает интервью, панель и переводит заявку
// в INTERVIEW_SCHEDULED; частичных состояний не остается
func (r *InterviewRepository) Schedule(ctx context.Context, d *dto.ScheduleInterviewDTO) (*result.InterviewResult, error) {
	r.log.Info("schedule interview started",
		zap.String("interview_id", d.Id),
		zap.String("application_id", d.ApplicationId),
		zap.Int("panel_size", len(d.BoardMemberIds)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Блокируем заявку и проверяем принадлежность студенту
	var appId, appStudentId string
	var appStatus domain.ApplicationStatus
	err = tx.QueryRow(ctx, selectApplicationOwnerForUpdateQuery, d.ApplicationId).Scan(&appId, &appStudentId, &appStatus)
	if err != nil {
		r.log.Error("failed to load application before scheduling",
			zap.String("application_id", d.ApplicationId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}
	if appStudentId != d.StudentId {
		return nil, fmt.Errorf("%w: application %s does not belong to student %s", ErrNotFound, d.ApplicationId, d.StudentId)
	}

	// Для заявки может существовать не больше одного интервью
	var existingId string
	err = tx.QueryRow(ctx, selectInterviewByApplicationQuery, d.ApplicationId).Scan(&existingId)
	if err == nil {
		return nil, fmt.Errorf("%w: interview %s already scheduled for application %s", ErrAlreadyExists, existingId, d.ApplicationId)
	}
	if !errors.Is(handleDBError(err), ErrNotFound) {
		return nil, handleDBError(err)
	}

	// Все члены панели должны существовать и быть активными
	if err := validatePanelCandidates(ctx, tx, d.BoardMemberIds); err != nil {
		return nil, err
	}

	interviewRes, err := readInterview(ctx, tx, insertInterviewQuery,
		d.Id, d.StudentId, d.ApplicationId, d.ScheduledAt, d.MeetingLink, d.Notes)
	if err != nil {
		r.log.Error("failed to insert interview",
			zap.String("interview_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	// Записываем панель
	for _, boardMemberId := range d.BoardMemberIds {
		if _, err := tx.Exec(ctx, insertPanelMemberQuery, interviewRes.Id, boardMemberId); err != nil {
			r.log.Error("failed to insert panel member",
				zap.String("interview_id", interviewRes.Id),
				zap.String("board_member_id", boardMemberId),
				zap.Error(err),
			)
			return nil, handleDBError(err)
		}
	}

	// Переводим заявку в INTERVIEW_SCHEDULED в той же транзакции
	if _, err := tx.Exec(ctx, updateApplicationStatusQuery, d.ApplicationId, domain.StatusInterviewScheduled); err != nil {
		r.log.Error("failed to update application status",
			zap.String("application_id", d.ApplicationId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit schedule transaction",
			zap.String("interview_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	interviewRes.PanelMemberIds = d.BoardMemberIds

	r.log.Info("interview scheduled",
		zap.String("interview_id", interviewRes.Id),
		zap.String("application_id", interviewRes.ApplicationId),
		zap.Int("panel_size", len(interviewRes.PanelMemberIds)),
	)
	// Ответ
	return interviewRes, nil
}

// Update частично обновляет интервью; при замене панели голоса удаленных
// членов стираются и полнота голосования пересчитывается под блокировкой
func (r *InterviewRepository) Update(ctx context.Context, d *dto.UpdateInterviewDTO) (*result.InterviewResult, error) {
	r.log.Info("update interview started",
		zap.String("interview_id", d.Id),
		zap.Bool("panel_replace", d.BoardMemberIds != nil),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Блокируем интервью
	current, err := readInterview(ctx, tx, selectInterviewForUpdateQuery, d.Id)
	if err != nil {
		r.log.Error("failed to load interview before update",
			zap.String("interview_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	// Панель нельзя редактировать после завершения интервью
	if d.BoardMemberIds != nil && current.Status == domain.InterviewCompleted {
		return nil, fmt.Errorf("%w: interview %s is already completed", ErrStateConflict, d.Id)
	}

	interviewRes, err := readInterview(ctx, tx, updateInterviewQuery,
		d.Id, d.ScheduledAt, d.MeetingLink, d.Notes, d.Status)
	if err != nil {
		r.log.Error("failed to update interview",
			zap.String("interview_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if d.BoardMemberIds != nil {
		if err := validatePanelCandidates(ctx, tx, d.BoardMemberIds); err != nil {
			return nil, err
		}

		// Замена панели целиком
		if _, err := tx.Exec(ctx, deletePanelMembersQuery, d.Id); err != nil {
			return nil, handleDBError(err)
		}
		for _, boardMemberId := range d.BoardMemberIds {
			if _, err := tx.Exec(ctx, insertPanelMemberQuery, d.Id, boardMemberId); err != nil {
				return nil, handleDBError(err)
			}
		}

		// Голоса членов, выбывших из панели, не должны влиять на итог
		if _, err := tx.Exec(ctx, deleteOrphanDecisionsQuery, d.Id, d.BoardMemberIds); err != nil {
			r.log.Error("failed to delete orphan decisions",
				zap.String("interview_id", d.Id),
				zap.Error(err),
			)
			return nil, handleDBError(err)
		}

		// Пересчитываем полноту голосования против новой панели
		if interviewRes.Status == domain.InterviewScheduled {
			completed, outcome, err := checkPanelCompletion(ctx, tx, d.Id)
			if err != nil {
				return nil, handleDBError(err)
			}
			if completed {
				if err := applyOutcome(ctx, tx, d.Id, interviewRes.ApplicationId, outcome); err != nil {
					return nil, handleDBError(err)
				}
				interviewRes.Status = domain.InterviewCompleted
			}
		}
	}

	// Чтение актуального состава панели
	panelMemberIds, err := readPanelMemberIds(ctx, tx, d.Id)
	if err != nil {
		return nil, handleDBError(err)
	}
	interviewRes.PanelMemberIds = panelMemberIds

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit update transaction",
			zap.String("interview_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("interview updated",
		zap.String("interview_id", interviewRes.Id),
		zap.String("status", string(interviewRes.Status)),
	)
	// Ответ
	return interviewRes, nil
}

func (r *InterviewRepository) Get(ctx context.Context, interviewId string) (*result.InterviewDetailsResult, error) {
	interviewRes, err := readInterview(ctx, r.db, selectInterviewQuery, interviewId)
	if err != nil {
		return nil, handleDBError(err)
	}

	panelMemberIds, err := readPanelMemberIds(ctx, r.db, interviewId)
	if err != nil {
		return nil, handleDBError(err)
	}
	interviewRes.PanelMemberIds = panelMemberIds

	decisions, err := readDecisions(ctx, r.db, interviewId)
	if err != nil {
		return nil, handleDBError(err)
	}

	return &result.InterviewDetailsResult{
		Interview: interviewRes,
		Decisions: decisions,
	}, nil
}

// RecordDecision критическая секция агрегатора: upsert голоса, подсчет и
// вычисление итога выполняются одной транзакцией под блокировкой строки
// интервью, поэтому итог вычисляется ровно один раз независимо от порядка
// и одновременности голосов
func (r *InterviewRepository) RecordDecision(ctx context.Context, d *dto.RecordDecisionDTO) (*result.DecisionResult, error) {
	r.log.Info("record decision started",
		zap.String("interview_id", d.InterviewId),
		zap.String("board_member_id", d.BoardMemberId),
		zap.String("decision", string(d.Decision)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Блокировка строки интервью сериализует конкурирующие финальные голоса
	interviewRes, err := readInterview(ctx, tx, selectInterviewForUpdateQuery, d.InterviewId)
	if err != nil {
		r.log.Error("failed to load interview before decision",
			zap.String("interview_id", d.InterviewId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	// После полного голосования менять голоса нельзя
	if interviewRes.Status == domain.InterviewCompleted {
		return nil, fmt.Errorf("%w: interview %s is already completed", ErrStateConflict, d.InterviewId)
	}

	// Голосовать может только член панели этого интервью
	var one int
	err = tx.QueryRow(ctx, selectPanelMemberQuery, d.InterviewId, d.BoardMemberId).Scan(&one)
	if err != nil {
		if errors.Is(handleDBError(err), ErrNotFound) {
			return nil, fmt.Errorf("%w: board member %s, interview %s", ErrNotPanelMember, d.BoardMemberId, d.InterviewId)
		}
		return nil, handleDBError(err)
	}

	// Повторный голос обновляет запись на месте
	decisionRow := &result.DecisionRow{}
	err = tx.QueryRow(ctx, upsertDecisionQuery, d.InterviewId, d.BoardMemberId, d.Decision, d.Comments).Scan(
		&decisionRow.InterviewId,
		&decisionRow.BoardMemberId,
		&decisionRow.Decision,
		&decisionRow.Comments,
		&decisionRow.CreatedAt,
		&decisionRow.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to upsert decision",
			zap.String("interview_id", d.InterviewId),
			zap.String("board_member_id", d.BoardMemberId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	decisionRes := &result.DecisionResult{
		Row:           decisionRow,
		ApplicationId: interviewRes.ApplicationId,
		StudentId:     interviewRes.StudentId,
	}

	var total int
	err = tx.QueryRow(ctx, countDecisionsQuery, d.InterviewId).Scan(&total, &decisionRes.Approvals, &decisionRes.Rejections)
	if err != nil {
		return nil, handleDBError(err)
	}
	err = tx.QueryRow(ctx, countPanelMembersQuery, d.InterviewId).Scan(&decisionRes.PanelSize)
	if err != nil {
		return nil, handleDBError(err)
	}

	// Панель проголосовала полностью - вычисляем итог ровно один раз
	if total == decisionRes.PanelSize {
		decisionRes.Completed = true
		decisionRes.Outcome = domain.PanelOutcome(decisionRes.Approvals, decisionRes.Rejections)
		if err := applyOutcome(ctx, tx, d.InterviewId, interviewRes.ApplicationId, decisionRes.Outcome); err != nil {
			r.log.Error("failed to apply panel outcome",
				zap.String("interview_id", d.InterviewId),
				zap.Error(err),
			)
			return nil, handleDBError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit decision transaction",
			zap.String("interview_id", d.InterviewId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("decision recorded",
		zap.String("interview_id", d.InterviewId),
		zap.String("board_member_id", d.BoardMemberId),
		zap.Bool("panel_completed", decisionRes.Completed),
		zap.String("outcome", string(decisionRes.Outcome)),
	)
	// Ответ
	return decisionRes, nil
}

func (r *InterviewRepository) ListDecisions(ctx context.Context, interviewId string) ([]*result.DecisionRow, error) {
	// Убедимся, что интервью существует
	if _, err := readInterview(ctx, r.db, selectInterviewQuery, interviewId); err != nil {
		return nil, handleDBError(err)
	}

	decisions, err := readDecisions(ctx, r.db, interviewId)
	if err != nil {
		return nil, handleDBError(err)
	}
	return decisions, nil
}

// вспомогательная функция проверки, что все кандидаты в панель существуют и активны
func validatePanelCandidates(ctx context.Context, exec queryExecutor, boardMemberIds []string) error {
	rows, err := exec.Query(ctx, selectActivePanelCandidatesQuery, boardMemberIds)
	if err != nil {
		return handleDBError(err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(boardMemberIds))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return handleDBError(err)
		}
		found[id] = true
	}

	var missing []string
	for _, id := range boardMemberIds {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unknown or inactive board members: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// вспомогательная функция для завершения интервью и записи итога в заявку
func applyOutcome(ctx context.Context, tx pgx.Tx, interviewId, applicationId string, outcome domain.ApplicationStatus) error {
	if _, err := tx.Exec(ctx, completeInterviewQuery, interviewId); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, updateApplicationStatusQuery, applicationId, outcome); err != nil {
		return err
	}
	return nil
}

// вспомогательная функция пересчета полноты голосования
func checkPanelCompletion(ctx context.Context, exec queryExecutor, interviewId string) (bool, domain.ApplicationStatus, error) {
	var total, approvals, rejections, panelSize int
	if err := exec.QueryRow(ctx, countDecisionsQuery, interviewId).Scan(&total, &approvals, &rejections); err != nil {
		return false, "", err
	}
	if err := exec.QueryRow(ctx, countPanelMembersQuery, interviewId).Scan(&panelSize); err != nil {
		return false, "", err
	}
	if panelSize == 0 || total != panelSize {
		return false, "", nil
	}
	return true, domain.PanelOutcome(approvals, rejections), nil
}

// вспомогательная функция для чтения строки интервью
func readInterview(ctx context.Context, exec queryExecutor, query string, args ...any) (*result.InterviewResult, error) {
	interviewRes := &result.InterviewResult{}
	err := exec.QueryRow(ctx, query, args...).Scan(
		&interviewRes.Id,
		&interviewRes.StudentId,
		&interviewRes.ApplicationId,
		&interviewRes.ScheduledAt,
		&interviewRes.MeetingLink,
		&interviewRes.Notes,
		&interviewRes.Status,
		&interviewRes.CreatedAt,
		&interviewRes.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return interviewRes, nil
}

// вспомогательная функция для чтения состава панели
func readPanelMemberIds(ctx context.Context, exec queryExecutor, interviewId string) ([]string, error) {
	rows, err := exec.Query(ctx, selectPanelMemberIdsQuery, interviewId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var panelMemberIds []string
	for rows.Next() {
		var boardMemberId string
		if err = rows.Scan(&boardMemberId); err != nil {
			return nil, err
		}
		panelMemberIds = append(panelMemberIds, boardMemberId)
	}
	return panelMemberIds, nil
}

// вспомогательная функция для чтения всех голосов интервью
func readDecisions(ctx context.Context, exec queryExecutor, interviewId string) ([]*result.DecisionRow, error) {
	rows, err := exec.Query(ctx, selectDecisionsQuery, interviewId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []*result.DecisionRow
	for rows.Next() {
		row := &result.DecisionRow{}
		err = rows.Scan(
			&row.InterviewId,
			&row.BoardMemberId,
			&row.Decision,
			&row.Comments,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, row)
	}
	return decisions, nil
}
