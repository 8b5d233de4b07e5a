package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pomodoro/internal/logger"
	"github.com/pomodoro/internal/model"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create вставляет сессию и проставляет s.ID (BIGSERIAL, id никогда не переиспользуются).
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	defer logger.DeferLogDuration("session.Create", time.Now())()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (owner, start_time, duration)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		s.Owner, s.StartTime, s.Duration,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

// ListRecentByOwner — последние limit сессий владельца, новые сверху (для истории).
func (r *SessionRepository) ListRecentByOwner(ctx context.Context, owner string, limit int) ([]model.Session, error) {
	defer logger.DeferLogDuration("session.ListRecentByOwner", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner, start_time, duration
		 FROM sessions WHERE owner = $1
		 ORDER BY start_time DESC
		 LIMIT $2`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.ListRecentByOwner: %w", err)
	}
	defer rows.Close()
	var list []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.Owner, &s.StartTime, &s.Duration); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListAllByOwner — все сессии владельца без лимита, по возрастанию id.
// Порядок фиксированный, чтобы повторная генерация календаря была побайтово стабильной.
func (r *SessionRepository) ListAllByOwner(ctx context.Context, owner string) ([]model.Session, error) {
	defer logger.DeferLogDuration("session.ListAllByOwner", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner, start_time, duration
		 FROM sessions WHERE owner = $1
		 ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.ListAllByOwner: %w", err)
	}
	defer rows.Close()
	var list []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.Owner, &s.StartTime, &s.Duration); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DeleteByIDAndOwner удаляет сессию только при совпадении и id, и владельца.
// Возвращает false, если строка не найдена — вызывающий код не различает
// «нет такой сессии» и «чужая сессия», это осознанно (не раскрываем чужие id).
func (r *SessionRepository) DeleteByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error) {
	defer logger.DeferLogDuration("session.DeleteByIDAndOwner", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return false, fmt.Errorf("sessionRepo.DeleteByIDAndOwner: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
