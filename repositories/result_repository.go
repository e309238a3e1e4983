package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/lib/pq"
)

var (
	ErrResultNotFound    = errors.New("result not found")
	ErrResultConflict    = errors.New("result for this event and rider already exists")
	ErrResultRefsInvalid = errors.New("result event or rider reference invalid")
)

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id int) (*models.Result, error)
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id int) error
	ListByEvent(ctx context.Context, eventID int) ([]models.Result, error)
	ListEventResults(ctx context.Context, eventID int) ([]models.EventResult, error)
	ListRecentByRider(ctx context.Context, riderID int, limit int) ([]models.RiderSeasonResult, error)
	// SumPointsByRider суммирует очки результатов по райдерам для событий,
	// стартовавших не раньше cutoff. Верхней границы по дате нет: будущие
	// события тоже попадают в окно.
	SumPointsByRider(ctx context.Context, exec SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error)
	Count(ctx context.Context) (int, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (event_id, rider_id, place, is_finalist, is_participant, points, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		result.EventID, result.RiderID, result.Place,
		result.IsFinalist, result.IsParticipant, result.Points, result.Comment,
	).Scan(&result.ID)
	return r.handleResultError(err)
}

func (r *postgresResultRepository) GetByID(ctx context.Context, id int) (*models.Result, error) {
	query := `
		SELECT id, event_id, rider_id, place, is_finalist, is_participant, points, comment
		FROM results
		WHERE id = $1`

	result := &models.Result{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&result.ID, &result.EventID, &result.RiderID, &result.Place,
		&result.IsFinalist, &result.IsParticipant, &result.Points, &result.Comment,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *postgresResultRepository) Update(ctx context.Context, result *models.Result) error {
	query := `
		UPDATE results SET
			place = $1,
			is_finalist = $2,
			is_participant = $3,
			points = $4,
			comment = $5
		WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query,
		result.Place, result.IsFinalist, result.IsParticipant,
		result.Points, result.Comment, result.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrResultNotFound)
}

func (r *postgresResultRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Result, error) {
	query := `
		SELECT id, event_id, rider_id, place, is_finalist, is_participant, points, comment
		FROM results
		WHERE event_id = $1
		ORDER BY place IS NULL, place ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.Result, 0)
	for rows.Next() {
		var result models.Result
		if scanErr := rows.Scan(
			&result.ID, &result.EventID, &result.RiderID, &result.Place,
			&result.IsFinalist, &result.IsParticipant, &result.Points, &result.Comment,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) ListEventResults(ctx context.Context, eventID int) ([]models.EventResult, error) {
	query := `
		SELECT r.id, r.nickname, r.city, r.level,
		       res.place, res.is_finalist, res.is_participant, res.points
		FROM results res
		JOIN riders r ON r.id = res.rider_id
		WHERE res.event_id = $1
		ORDER BY res.place IS NULL, res.place ASC, r.id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.EventResult, 0)
	for rows.Next() {
		var er models.EventResult
		if scanErr := rows.Scan(
			&er.RiderID, &er.Nickname, &er.City, &er.RiderLevel,
			&er.Place, &er.IsFinalist, &er.IsParticipant, &er.Points,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, er)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) ListRecentByRider(ctx context.Context, riderID int, limit int) ([]models.RiderSeasonResult, error) {
	query := `
		SELECT e.id, e.name, e.city, e.level, e.date_start,
		       res.place, res.is_finalist, res.is_participant, res.points
		FROM results res
		JOIN events e ON e.id = res.event_id
		WHERE res.rider_id = $1
		ORDER BY e.date_start DESC, e.id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, riderID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.RiderSeasonResult, 0)
	for rows.Next() {
		var sr models.RiderSeasonResult
		if scanErr := rows.Scan(
			&sr.EventID, &sr.EventName, &sr.EventCity, &sr.EventLevel, &sr.EventDate,
			&sr.Place, &sr.IsFinalist, &sr.IsParticipant, &sr.Points,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) SumPointsByRider(ctx context.Context, exec SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT res.rider_id, COALESCE(SUM(res.points), 0) AS total_points
		FROM results res
		JOIN events e ON e.id = res.event_id
		WHERE e.date_start >= $1`
	args := []interface{}{cutoff}
	if publishedOnly {
		query += ` AND e.status = $2`
		args = append(args, models.EventStatusPublished)
	}
	query += ` GROUP BY res.rider_id ORDER BY res.rider_id`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]models.RiderPointsTotal, 0)
	for rows.Next() {
		var t models.RiderPointsTotal
		if scanErr := rows.Scan(&t.RiderID, &t.Total); scanErr != nil {
			return nil, scanErr
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *postgresResultRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}

func (r *postgresResultRepository) handleResultError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "results_event_rider_key" {
				return ErrResultConflict
			}
		case "23503":
			return ErrResultRefsInvalid
		}
	}
	return err
}
