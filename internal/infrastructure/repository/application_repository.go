package repository

import (
	"context"
	"fmt"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/eduaid/review-service/internal/infrastructure/models/dto"
	"github.com/eduaid/review-service/internal/infrastructure/models/result"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectApplicationQuery = `
SELECT id, student_id, status, notes, submitted_at, created_at, updated_at
FROM applications
WHERE id = $1;`

	selectApplicationForUpdateQuery = `
SELECT id, student_id, status, notes, submitted_at, created_at, updated_at
FROM applications
WHERE id = $1
FOR UPDATE;`

	submitApplicationQuery = `
UPDATE applications
SET status       = 'PENDING',
    submitted_at = CURRENT_TIMESTAMP,
    updated_at   = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING id, student_id, status, notes, submitted_at, created_at, updated_at;`

	setApplicationStatusQuery = `
UPDATE applications
SET status     = $2,
    notes      = COALESCE($3, notes),
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING id, student_id, status, notes, submitted_at, created_at, updated_at;`
)

type ApplicationRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewApplicationRepository(db *pgxpool.Pool, log *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:  db,
		log: log,
	}
}

// Submit переводит заявку DRAFT -> PENDING; проверка статуса и обновление
// выполняются под блокировкой строки
func (r *ApplicationRepository) Submit(ctx context.Context, applicationId string) (*result.ApplicationResult, error) {
	r.log.Info("submit application started", zap.String("application_id", applicationId))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Читаем текущее состояние заявки под блокировкой
	appRes, err := readApplication(ctx, tx, selectApplicationForUpdateQuery, applicationId)
	if err != nil {
		r.log.Error("failed to load application before submit",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	// Подать можно только черновик
	if appRes.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: application %s is %s", ErrStateConflict, applicationId, appRes.Status)
	}

	appRes, err = readApplication(ctx, tx, submitApplicationQuery, applicationId)
	if err != nil {
		r.log.Error("failed to submit application",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit submit transaction",
			zap.String("application_id", applicationId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("application submitted",
		zap.String("application_id", appRes.Id),
		zap.String("status", string(appRes.Status)),
	)
	// Ответ
	return appRes, nil
}

func (r *ApplicationRepository) SetStatus(ctx context.Context, d *dto.SetStatusDTO) (*result.ApplicationResult, error) {
	r.log.Info("set application status started",
		zap.String("application_id", d.Id),
		zap.String("status", string(d.Status)),
	)

	appRes, err := readApplication(ctx, r.db, setApplicationStatusQuery, d.Id, d.Status, d.Notes)
	if err != nil {
		r.log.Error("failed to set application status",
			zap.String("application_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("application status updated",
		zap.String("application_id", appRes.Id),
		zap.String("status", string(appRes.Status)),
	)
	// Ответ
	return appRes, nil
}

func (r *ApplicationRepository) GetById(ctx context.Context, applicationId string) (*result.ApplicationResult, error) {
	appRes, err := readApplication(ctx, r.db, selectApplicationQuery, applicationId)
	if err != nil {
		return nil, handleDBError(err)
	}
	return appRes, nil
}

type queryExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// вспомогательная функция для чтения строки заявки
func readApplication(ctx context.Context, exec queryExecutor, query string, args ...any) (*result.ApplicationResult, error) {
	appRes := &result.ApplicationResult{}
	err := exec.QueryRow(ctx, query, args...).Scan(
		&appRes.Id,
		&appRes.StudentId,
		&appRes.Status,
		&appRes.Notes,
		&appRes.SubmittedAt,
		&appRes.CreatedAt,
		&appRes.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return appRes, nil
}
