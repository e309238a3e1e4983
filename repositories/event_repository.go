package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexkachalkov/scootrate/models"
)

var ErrEventNotFound = errors.New("event not found")

// ListEventsFilter — фильтры списков событий. Status задаётся только в
// админке; публичный список всегда ограничен published.
type ListEventsFilter struct {
	Status   *models.EventStatus
	Level    *models.EventLevel
	City     *string
	Search   *string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter ListEventsFilter) ([]models.Event, int, error)
	Count(ctx context.Context, status *models.EventStatus) (int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, name, date_start, date_end, city, level, participants_count, style,
	has_best_trick, source_url, organizer_contact, status, created_at, updated_at`

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (
			name, date_start, date_end, city, level, participants_count,
			style, has_best_trick, source_url, organizer_contact, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Name, event.DateStart, event.DateEnd, event.City, event.Level,
		event.ParticipantsCount, event.Style, event.HasBestTrick,
		event.SourceURL, event.OrganizerContact, event.Status,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.DateStart, &event.DateEnd, &event.City,
		&event.Level, &event.ParticipantsCount, &event.Style, &event.HasBestTrick,
		&event.SourceURL, &event.OrganizerContact, &event.Status,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events SET
			name = $1,
			date_start = $2,
			date_end = $3,
			city = $4,
			level = $5,
			participants_count = $6,
			style = $7,
			has_best_trick = $8,
			source_url = $9,
			organizer_contact = $10,
			status = $11,
			updated_at = now()
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		event.Name, event.DateStart, event.DateEnd, event.City, event.Level,
		event.ParticipantsCount, event.Style, event.HasBestTrick,
		event.SourceURL, event.OrganizerContact, event.Status, event.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	query := `UPDATE events SET status = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) List(ctx context.Context, filter ListEventsFilter) ([]models.Event, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Level != nil {
		where += fmt.Sprintf(" AND level = $%d", argID)
		args = append(args, *filter.Level)
		argID++
	}
	if filter.City != nil {
		where += fmt.Sprintf(" AND city ILIKE $%d", argID)
		args = append(args, "%"+*filter.City+"%")
		argID++
	}
	if filter.Search != nil {
		where += fmt.Sprintf(" AND name ILIKE $%d", argID)
		args = append(args, "%"+*filter.Search+"%")
		argID++
	}
	if filter.DateFrom != nil {
		where += fmt.Sprintf(" AND date_start >= $%d", argID)
		args = append(args, *filter.DateFrom)
		argID++
	}
	if filter.DateTo != nil {
		where += fmt.Sprintf(" AND date_start <= $%d", argID)
		args = append(args, *filter.DateTo)
		argID++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		fmt.Sprintf(" ORDER BY date_start DESC, id DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		if scanErr := rows.Scan(
			&event.ID, &event.Name, &event.DateStart, &event.DateEnd, &event.City,
			&event.Level, &event.ParticipantsCount, &event.Style, &event.HasBestTrick,
			&event.SourceURL, &event.OrganizerContact, &event.Status,
			&event.CreatedAt, &event.UpdatedAt,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *postgresEventRepository) Count(ctx context.Context, status *models.EventStatus) (int, error) {
	var count int
	var err error
	if status != nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE status = $1`, *status).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	}
	return count, err
}
