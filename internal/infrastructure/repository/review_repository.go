package repository

import (
	"context"

	"github.com/eduaid/review-service/internal/infrastructure/models/dto"
	"github.com/eduaid/review-service/internal/infrastructure/models/result"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	reviewColumns = `
id, application_id, student_id, officer_id, task_type, status,
score, flags, recommendation, notes, created_at, updated_at`

	selectReviewByKeyQuery = `
SELECT ` + reviewColumns + `
FROM field_reviews
WHERE application_id = $1
  AND officer_id = $2
  AND task_type IS NOT DISTINCT FROM $3;`

	insertReviewQuery = `
INSERT INTO field_reviews (id, application_id, student_id, officer_id, task_type)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + reviewColumns + `;`

	selectReviewQuery = `
SELECT ` + reviewColumns + `
FROM field_reviews
WHERE id = $1;`

	reassignReviewQuery = `
UPDATE field_reviews
SET officer_id = $2,
    status     = 'PENDING',
    notes      = $3,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING ` + reviewColumns + `;`

	completeReviewQuery = `
UPDATE field_reviews
SET status         = 'COMPLETED',
    score          = $2,
    flags          = $3,
    recommendation = $4,
    notes          = COALESCE($5, notes),
    updated_at     = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING ` + reviewColumns + `;`

	deleteReviewQuery = `
DELETE FROM field_reviews
WHERE id = $1;`

	listReviewsQuery = `
SELECT ` + reviewColumns + `
FROM field_reviews
ORDER BY updated_at DESC;`

	listReviewsByOfficerQuery = `
SELECT ` + reviewColumns + `
FROM field_reviews
WHERE officer_id = $1
ORDER BY updated_at DESC;`
)

type ReviewRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewReviewRepository(db *pgxpool.Pool, log *zap.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:  db,
		log: log,
	}
}

// FindByKey ищет назначение по тройке (application_id, officer_id, task_type);
// NULL task_type и непустой task_type считаются разными ключами
func (r *ReviewRepository) FindByKey(ctx context.Context, applicationId, officerId string, taskType *string) (*result.ReviewResult, error) {
	row := r.db.QueryRow(ctx, selectReviewByKeyQuery, applicationId, officerId, taskType)
	reviewRes, err := scanReview(row)
	if err != nil {
		return nil, handleDBError(err)
	}
	return reviewRes, nil
}

func (r *ReviewRepository) Create(ctx context.Context, d *dto.AssignReviewDTO) (*result.ReviewResult, error) {
	r.log.Info("create field review started",
		zap.String("review_id", d.Id),
		zap.String("application_id", d.ApplicationId),
		zap.String("officer_id", d.OfficerId),
	)

	row := r.db.QueryRow(ctx, insertReviewQuery, d.Id, d.ApplicationId, d.StudentId, d.OfficerId, d.TaskType)
	reviewRes, err := scanReview(row)
	if err != nil {
		r.log.Error("failed to insert field review",
			zap.String("review_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("field review created", zap.String("review_id", reviewRes.Id))
	// Ответ
	return reviewRes, nil
}

func (r *ReviewRepository) GetById(ctx context.Context, reviewId string) (*result.ReviewResult, error) {
	row := r.db.QueryRow(ctx, selectReviewQuery, reviewId)
	reviewRes, err := scanReview(row)
	if err != nil {
		return nil, handleDBError(err)
	}
	return reviewRes, nil
}

// Reassign меняет офицера и сбрасывает статус в PENDING; новые notes
// собираются в сервисном слое, чтобы сохранить историю
func (r *ReviewRepository) Reassign(ctx context.Context, d *dto.ReassignReviewDTO) (*result.ReviewResult, error) {
	r.log.Info("reassign field review started",
		zap.String("review_id", d.Id),
		zap.String("new_officer_id", d.NewOfficerId),
	)

	row := r.db.QueryRow(ctx, reassignReviewQuery, d.Id, d.NewOfficerId, d.Notes)
	reviewRes, err := scanReview(row)
	if err != nil {
		r.log.Error("failed to reassign field review",
			zap.String("review_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("field review reassigned",
		zap.String("review_id", reviewRes.Id),
		zap.String("officer_id", reviewRes.OfficerId),
	)
	// Ответ
	return reviewRes, nil
}

func (r *ReviewRepository) Complete(ctx context.Context, d *dto.CompleteReviewDTO) (*result.ReviewResult, error) {
	r.log.Info("complete field review started", zap.String("review_id", d.Id))

	row := r.db.QueryRow(ctx, completeReviewQuery, d.Id, d.Score, d.Flags, d.Recommendation, d.Notes)
	reviewRes, err := scanReview(row)
	if err != nil {
		r.log.Error("failed to complete field review",
			zap.String("review_id", d.Id),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("field review completed", zap.String("review_id", reviewRes.Id))
	// Ответ
	return reviewRes, nil
}

// Delete жесткое удаление назначения
func (r *ReviewRepository) Delete(ctx context.Context, reviewId string) error {
	cmdTag, err := r.db.Exec(ctx, deleteReviewQuery, reviewId)
	if err != nil {
		r.log.Error("failed to delete field review",
			zap.String("review_id", reviewId),
			zap.Error(err),
		)
		return handleDBError(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("field review deleted", zap.String("review_id", reviewId))
	return nil
}

// List officerId == nil значит все назначения (админ), иначе только свои
func (r *ReviewRepository) List(ctx context.Context, officerId *string) ([]*result.ReviewResult, error) {
	query := listReviewsQuery
	args := []any{}
	if officerId != nil {
		query = listReviewsByOfficerQuery
		args = append(args, *officerId)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var reviews []*result.ReviewResult
	for rows.Next() {
		reviewRes, err := scanReview(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		reviews = append(reviews, reviewRes)
	}
	return reviews, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// вспомогательная функция для чтения строки назначения
func scanReview(row rowScanner) (*result.ReviewResult, error) {
	reviewRes := &result.ReviewResult{}
	err := row.Scan(
		&reviewRes.Id,
		&reviewRes.ApplicationId,
		&reviewRes.StudentId,
		&reviewRes.OfficerId,
		&reviewRes.TaskType,
		&reviewRes.Status,
		&reviewRes.Score,
		&reviewRes.Flags,
		&reviewRes.Recommendation,
		&reviewRes.Notes,
		&reviewRes.CreatedAt,
		&reviewRes.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reviewRes, nil
}
