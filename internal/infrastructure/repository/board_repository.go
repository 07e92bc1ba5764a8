package repository

import (
	"context"

	"github.com/eduaid/review-service/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectUserQuery = `
SELECT id, name, email, role, is_active, created_at
FROM users
WHERE id = $1;`

	selectAdminIdsQuery = `
SELECT id FROM users
WHERE role = 'ADMIN' AND is_active = TRUE;`

	selectActiveBoardMembersQuery = `
SELECT id, name, email, title, is_active, created_at
FROM board_members
WHERE id = ANY($1::uuid[]) AND is_active = TRUE;`
)

// BoardRepository читает справочники пользователей и членов комиссии,
// которыми владеет внешний административный слой
type BoardRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewBoardRepository(db *pgxpool.Pool, log *zap.Logger) *BoardRepository {
	return &BoardRepository{
		db:  db,
		log: log,
	}
}

func (r *BoardRepository) GetUser(ctx context.Context, userId string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRow(ctx, selectUserQuery, userId).Scan(
		&user.Id,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, handleDBError(err)
	}
	return user, nil
}

// SelectAdminIds все активные администраторы, получатели уведомлений о завершении проверки
func (r *BoardRepository) SelectAdminIds(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, selectAdminIdsQuery)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var adminIds []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, handleDBError(err)
		}
		adminIds = append(adminIds, id)
	}
	return adminIds, nil
}

// SelectActiveBoardMembers возвращает только найденные активные записи,
// отсутствующие/неактивные id вычисляет вызывающая сторона
func (r *BoardRepository) SelectActiveBoardMembers(ctx context.Context, boardMemberIds []string) ([]*domain.BoardMember, error) {
	rows, err := r.db.Query(ctx, selectActiveBoardMembersQuery, boardMemberIds)
	if err != nil {
		r.log.Error("failed to load board members", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var members []*domain.BoardMember
	for rows.Next() {
		member := &domain.BoardMember{}
		err = rows.Scan(
			&member.Id,
			&member.Name,
			&member.Email,
			&member.Title,
			&member.IsActive,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		members = append(members, member)
	}
	return members, nil
}
