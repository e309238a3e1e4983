package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/lib/pq"
)

var (
	ErrRiderNotFound         = errors.New("rider not found")
	ErrRiderNicknameConflict = errors.New("rider nickname conflict")
)

// ListRidersFilter — фильтры админского списка райдеров.
type ListRidersFilter struct {
	Search *string
	Level  *string
	Style  *string
	City   *string
	Limit  int
	Offset int
}

// RatingFilter — фильтры публичного рейтинга. Возрастные границы уже
// переведены сервисом в границы даты рождения.
type RatingFilter struct {
	Search       *string
	City         *string
	Style        *string
	Level        *string
	BirthdateMax *time.Time // born on or before: ageMin
	BirthdateMin *time.Time // born on or after: ageMax
	Limit        int
	Offset       int
}

type RiderRepository interface {
	Create(ctx context.Context, rider *models.Rider) error
	GetByID(ctx context.Context, id int) (*models.Rider, error)
	GetByNickname(ctx context.Context, nickname string) (*models.Rider, error)
	Update(ctx context.Context, rider *models.Rider) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter ListRidersFilter) ([]models.Rider, int, error)
	Rating(ctx context.Context, filter RatingFilter) ([]models.RatingItem, int, error)
	ProfileByID(ctx context.Context, id int) (*models.RatingItem, error)
	Count(ctx context.Context) (int, error)
	CountWithSeasonPoints(ctx context.Context) (int, error)
}

type postgresRiderRepository struct {
	db *sql.DB
}

func NewPostgresRiderRepository(db *sql.DB) RiderRepository {
	return &postgresRiderRepository{db: db}
}

const riderColumns = `id, nickname, fullname, city, birthdate, style, level, photo_key, email, socials_json, created_at, updated_at`

func (r *postgresRiderRepository) Create(ctx context.Context, rider *models.Rider) error {
	query := `
		INSERT INTO riders (nickname, fullname, city, birthdate, style, level, photo_key, email, socials_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '{}'))
		RETURNING id, socials_json, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		rider.Nickname,
		rider.Fullname,
		rider.City,
		rider.Birthdate,
		rider.Style,
		rider.Level,
		rider.PhotoKey,
		rider.Email,
		rider.SocialsJSON,
	).Scan(&rider.ID, &rider.SocialsJSON, &rider.CreatedAt, &rider.UpdatedAt)

	return r.handleRiderError(err)
}

func (r *postgresRiderRepository) GetByID(ctx context.Context, id int) (*models.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE id = $1`

	rider := &models.Rider{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rider.ID, &rider.Nickname, &rider.Fullname, &rider.City, &rider.Birthdate,
		&rider.Style, &rider.Level, &rider.PhotoKey, &rider.Email, &rider.SocialsJSON,
		&rider.CreatedAt, &rider.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}
	return rider, nil
}

// GetByNickname ищет райдера по нику без учёта регистра, нужен CSV-импорту.
func (r *postgresRiderRepository) GetByNickname(ctx context.Context, nickname string) (*models.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE LOWER(nickname) = LOWER($1)`

	rider := &models.Rider{}
	err := r.db.QueryRowContext(ctx, query, nickname).Scan(
		&rider.ID, &rider.Nickname, &rider.Fullname, &rider.City, &rider.Birthdate,
		&rider.Style, &rider.Level, &rider.PhotoKey, &rider.Email, &rider.SocialsJSON,
		&rider.CreatedAt, &rider.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}
	return rider, nil
}

// Update перезаписывает поля райдера. Частичность обновления обеспечивает
// сервисный слой, который заранее читает текущую строку.
func (r *postgresRiderRepository) Update(ctx context.Context, rider *models.Rider) error {
	query := `
		UPDATE riders SET
			nickname = $1,
			fullname = $2,
			city = $3,
			birthdate = $4,
			style = $5,
			level = $6,
			email = $7,
			socials_json = $8,
			updated_at = now()
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		rider.Nickname, rider.Fullname, rider.City, rider.Birthdate,
		rider.Style, rider.Level, rider.Email, rider.SocialsJSON, rider.ID,
	)
	if err != nil {
		return r.handleRiderError(err)
	}
	return checkAffectedRows(result, ErrRiderNotFound)
}

func (r *postgresRiderRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	query := `UPDATE riders SET photo_key = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRiderNotFound)
}

func (r *postgresRiderRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM riders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRiderNotFound)
}

func (r *postgresRiderRepository) List(ctx context.Context, filter ListRidersFilter) ([]models.Rider, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Search != nil {
		where += fmt.Sprintf(" AND (nickname ILIKE $%d OR COALESCE(fullname, '') ILIKE $%d)", argID, argID+1)
		like := "%" + *filter.Search + "%"
		args = append(args, like, like)
		argID += 2
	}
	if filter.Level != nil {
		where += fmt.Sprintf(" AND level = $%d", argID)
		args = append(args, *filter.Level)
		argID++
	}
	if filter.Style != nil {
		where += fmt.Sprintf(" AND style = $%d", argID)
		args = append(args, *filter.Style)
		argID++
	}
	if filter.City != nil {
		where += fmt.Sprintf(" AND city ILIKE $%d", argID)
		args = append(args, "%"+*filter.City+"%")
		argID++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM riders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + riderColumns + ` FROM riders` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	riders := make([]models.Rider, 0)
	for rows.Next() {
		var rider models.Rider
		if scanErr := rows.Scan(
			&rider.ID, &rider.Nickname, &rider.Fullname, &rider.City, &rider.Birthdate,
			&rider.Style, &rider.Level, &rider.PhotoKey, &rider.Email, &rider.SocialsJSON,
			&rider.CreatedAt, &rider.UpdatedAt,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		riders = append(riders, rider)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return riders, total, nil
}

// Rating строит публичный рейтинг: райдеры с LEFT JOIN к кэшу сезонных очков,
// отсутствующая строка кэша считается нулём. Сортировка стабильна: очки по
// убыванию, при равенстве — id по возрастанию.
func (r *postgresRiderRepository) Rating(ctx context.Context, filter RatingFilter) ([]models.RatingItem, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.City != nil {
		where += fmt.Sprintf(" AND r.city ILIKE $%d", argID)
		args = append(args, "%"+*filter.City+"%")
		argID++
	}
	if filter.Level != nil {
		where += fmt.Sprintf(" AND r.level = $%d", argID)
		args = append(args, *filter.Level)
		argID++
	}
	if filter.Style != nil {
		where += fmt.Sprintf(" AND r.style = $%d", argID)
		args = append(args, *filter.Style)
		argID++
	}
	if filter.Search != nil {
		where += fmt.Sprintf(" AND (r.nickname ILIKE $%d OR COALESCE(r.fullname, '') ILIKE $%d)", argID, argID+1)
		like := "%" + *filter.Search + "%"
		args = append(args, like, like)
		argID += 2
	}
	if filter.BirthdateMax != nil {
		where += fmt.Sprintf(" AND r.birthdate <= $%d", argID)
		args = append(args, *filter.BirthdateMax)
		argID++
	}
	if filter.BirthdateMin != nil {
		where += fmt.Sprintf(" AND r.birthdate >= $%d", argID)
		args = append(args, *filter.BirthdateMin)
		argID++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM riders r
		LEFT JOIN season_points sp ON sp.rider_id = r.id` + where

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT r.id, r.nickname, r.fullname, r.city, r.birthdate, r.style, r.level,
		       COALESCE(sp.season_points, 0) AS season_points
		FROM riders r
		LEFT JOIN season_points sp ON sp.rider_id = r.id` + where +
		fmt.Sprintf(" ORDER BY season_points DESC, r.id ASC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]models.RatingItem, 0)
	for rows.Next() {
		var item models.RatingItem
		if scanErr := rows.Scan(
			&item.ID, &item.Nickname, &item.Fullname, &item.City, &item.Birthdate,
			&item.Style, &item.Level, &item.SeasonPoints,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *postgresRiderRepository) ProfileByID(ctx context.Context, id int) (*models.RatingItem, error) {
	query := `
		SELECT r.id, r.nickname, r.fullname, r.city, r.birthdate, r.style, r.level,
		       COALESCE(sp.season_points, 0) AS season_points
		FROM riders r
		LEFT JOIN season_points sp ON sp.rider_id = r.id
		WHERE r.id = $1`

	item := &models.RatingItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Nickname, &item.Fullname, &item.City, &item.Birthdate,
		&item.Style, &item.Level, &item.SeasonPoints,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRiderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM riders`).Scan(&count)
	return count, err
}

func (r *postgresRiderRepository) CountWithSeasonPoints(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM season_points`).Scan(&count)
	return count, err
}

func (r *postgresRiderRepository) handleRiderError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "riders_nickname_key" {
			return ErrRiderNicknameConflict
		}
	}
	return err
}
