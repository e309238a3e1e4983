package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
	profileResults   = 50
)

// RatingQuery — входные параметры публичного рейтинга. Нечисловые значения
// page/limit/age HTTP-слой превращает в nil/нули, сервис подставляет дефолты.
type RatingQuery struct {
	Search  string
	City    string
	Style   string
	Level   string
	AgeMin  *int
	AgeMax  *int
	AllAges bool
	Page    int
	Limit   int
}

// RatingPage — страница рейтинга плюс полное количество строк под фильтрами
// (без учёта пагинации), чтобы клиент мог посчитать число страниц.
type RatingPage struct {
	Items []models.RatingItem `json:"items"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type RatingService interface {
	Rating(ctx context.Context, query RatingQuery) (*RatingPage, error)
	RiderProfile(ctx context.Context, riderID int) (*models.RiderProfile, error)
}

type ratingService struct {
	riderRepo  repositories.RiderRepository
	resultRepo repositories.ResultRepository
	now        func() time.Time
}

func NewRatingService(riderRepo repositories.RiderRepository, resultRepo repositories.ResultRepository) RatingService {
	return &ratingService{
		riderRepo:  riderRepo,
		resultRepo: resultRepo,
		now:        time.Now,
	}
}

func (s *ratingService) Rating(ctx context.Context, query RatingQuery) (*RatingPage, error) {
	page, limit := NormalizePage(query.Page, query.Limit)
	today := s.now()

	filter := repositories.RatingFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if query.Search != "" {
		filter.Search = &query.Search
	}
	if query.City != "" {
		filter.City = &query.City
	}
	if query.Style != "" {
		filter.Style = &query.Style
	}
	if query.Level != "" {
		filter.Level = &query.Level
	}
	if !query.AllAges {
		if query.AgeMin != nil {
			maxBirth := subtractYears(today, *query.AgeMin)
			filter.BirthdateMax = &maxBirth
		}
		if query.AgeMax != nil {
			// +1 год и +1 день: возраст ageMax включительно.
			minBirth := subtractYears(today, *query.AgeMax+1).AddDate(0, 0, 1)
			filter.BirthdateMin = &minBirth
		}
	}

	items, total, err := s.riderRepo.Rating(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating: %w", err)
	}

	for i := range items {
		items[i].Age = CalculateAge(items[i].Birthdate, today)
	}

	return &RatingPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ratingService) RiderProfile(ctx context.Context, riderID int) (*models.RiderProfile, error) {
	item, err := s.riderRepo.ProfileByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return nil, ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to load rider profile: %w", err)
	}
	item.Age = CalculateAge(item.Birthdate, s.now())

	results, err := s.resultRepo.ListRecentByRider(ctx, riderID, profileResults)
	if err != nil {
		return nil, fmt.Errorf("failed to load rider results: %w", err)
	}

	return &models.RiderProfile{Rider: *item, SeasonResults: results}, nil
}

// NormalizePage приводит страницу и размер страницы к допустимым значениям:
// page >= 1, limit в пределах [1, maxPageLimit] с дефолтом defaultPageLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
