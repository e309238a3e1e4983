package repositories

import (
	"context"
	"database/sql"
	"time"
)

// SeasonRepository управляет кэшем сезонных очков. Оба метода принимают
// SQLExecutor: пересчёт всегда идёт внутри одной транзакции сервисного слоя,
// чтобы читатели рейтинга не увидели пустой кэш.
type SeasonRepository interface {
	DeleteAll(ctx context.Context, exec SQLExecutor) error
	Upsert(ctx context.Context, exec SQLExecutor, riderID int, points int, updatedAt time.Time) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeasonRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM season_points`)
	return err
}

func (r *postgresSeasonRepository) Upsert(ctx context.Context, exec SQLExecutor, riderID int, points int, updatedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO season_points (rider_id, season_points, season_updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (rider_id) DO UPDATE SET
			season_points = EXCLUDED.season_points,
			season_updated_at = EXCLUDED.season_updated_at`
	_, err := executor.ExecContext(ctx, query, riderID, points, updatedAt)
	return err
}
