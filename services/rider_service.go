package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
	"github.com/alexkachalkov/scootrate/storage"
)

type CreateRiderInput struct {
	Nickname    string  `json:"nickname"`
	Fullname    *string `json:"fullname"`
	City        string  `json:"city"`
	Birthdate   string  `json:"birthdate"`
	Style       string  `json:"style"`
	Level       string  `json:"level"`
	Email       *string `json:"email"`
	SocialsJSON *string `json:"socials_json"`
}

// UpdateRiderInput — частичное обновление: nil-поля не трогаются.
type UpdateRiderInput struct {
	Nickname    *string `json:"nickname"`
	Fullname    *string `json:"fullname"`
	City        *string `json:"city"`
	Birthdate   *string `json:"birthdate"`
	Style       *string `json:"style"`
	Level       *string `json:"level"`
	Email       *string `json:"email"`
	SocialsJSON *string `json:"socials_json"`
}

type ListRidersInput struct {
	Search string
	Level  string
	Style  string
	City   string
	Page   int
	Limit  int
}

type RidersPage struct {
	Items []models.Rider `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type RiderService interface {
	Create(ctx context.Context, actor models.AuthUser, input CreateRiderInput) (*models.Rider, error)
	Update(ctx context.Context, actor models.AuthUser, riderID int, input UpdateRiderInput) (*models.Rider, error)
	Delete(ctx context.Context, actor models.AuthUser, riderID int) error
	List(ctx context.Context, input ListRidersInput) (*RidersPage, error)
	GetByID(ctx context.Context, riderID int) (*models.Rider, error)
	UploadPhoto(ctx context.Context, actor models.AuthUser, riderID int, contentType string, photo io.Reader) (*models.Rider, error)
}

type riderService struct {
	auditRecorder
	riderRepo repositories.RiderRepository
	uploader  storage.FileUploader
}

func NewRiderService(
	riderRepo repositories.RiderRepository,
	auditRepo repositories.AuditRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) RiderService {
	return &riderService{
		auditRecorder: auditRecorder{auditRepo: auditRepo, logger: logger},
		riderRepo:     riderRepo,
		uploader:      uploader,
	}
}

func (s *riderService) Create(ctx context.Context, actor models.AuthUser, input CreateRiderInput) (*models.Rider, error) {
	var problems []string
	if input.Nickname == "" {
		problems = append(problems, "nickname is required")
	}
	if input.City == "" {
		problems = append(problems, "city is required")
	}
	if input.Birthdate == "" {
		problems = append(problems, "birthdate is required")
	}
	if input.Style == "" {
		problems = append(problems, "style is required")
	}
	if input.Level == "" {
		problems = append(problems, "level is required")
	}
	if err := newValidationError(problems); err != nil {
		return nil, err
	}

	birthdate, err := parseDate(input.Birthdate)
	if err != nil {
		return nil, err
	}

	rider := &models.Rider{
		Nickname:    input.Nickname,
		Fullname:    input.Fullname,
		City:        &input.City,
		Birthdate:   &birthdate,
		Style:       &input.Style,
		Level:       &input.Level,
		Email:       input.Email,
		SocialsJSON: input.SocialsJSON,
	}

	if err := s.riderRepo.Create(ctx, rider); err != nil {
		if errors.Is(err, repositories.ErrRiderNicknameConflict) {
			return nil, ErrRiderNicknameConflict
		}
		return nil, fmt.Errorf("failed to create rider: %w", err)
	}

	s.record(ctx, actor, "rider", &rider.ID, "create", map[string]interface{}{
		"nickname": rider.Nickname,
		"city":     input.City,
	})
	s.fillPhotoURL(rider)
	return rider, nil
}

func (s *riderService) Update(ctx context.Context, actor models.AuthUser, riderID int, input UpdateRiderInput) (*models.Rider, error) {
	rider, err := s.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		rider.Nickname = *input.Nickname
	}
	if input.Fullname != nil {
		rider.Fullname = input.Fullname
	}
	if input.City != nil {
		rider.City = input.City
	}
	if input.Birthdate != nil {
		birthdate, err := parseOptionalDate(input.Birthdate)
		if err != nil {
			return nil, err
		}
		rider.Birthdate = birthdate
	}
	if input.Style != nil {
		rider.Style = input.Style
	}
	if input.Level != nil {
		rider.Level = input.Level
	}
	if input.Email != nil {
		rider.Email = input.Email
	}
	if input.SocialsJSON != nil {
		rider.SocialsJSON = input.SocialsJSON
	}

	if err := s.riderRepo.Update(ctx, rider); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRiderNotFound):
			return nil, ErrRiderNotFound
		case errors.Is(err, repositories.ErrRiderNicknameConflict):
			return nil, ErrRiderNicknameConflict
		}
		return nil, fmt.Errorf("failed to update rider: %w", err)
	}

	s.record(ctx, actor, "rider", &riderID, "update", map[string]interface{}{
		"nickname": rider.Nickname,
	})
	s.fillPhotoURL(rider)
	return rider, nil
}

func (s *riderService) Delete(ctx context.Context, actor models.AuthUser, riderID int) error {
	if err := s.riderRepo.Delete(ctx, riderID); err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return ErrRiderNotFound
		}
		return fmt.Errorf("failed to delete rider: %w", err)
	}
	s.record(ctx, actor, "rider", &riderID, "delete", nil)
	return nil
}

func (s *riderService) List(ctx context.Context, input ListRidersInput) (*RidersPage, error) {
	page, limit := NormalizePage(input.Page, input.Limit)

	filter := repositories.ListRidersFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if input.Search != "" {
		filter.Search = &input.Search
	}
	if input.Level != "" {
		filter.Level = &input.Level
	}
	if input.Style != "" {
		filter.Style = &input.Style
	}
	if input.City != "" {
		filter.City = &input.City
	}

	riders, total, err := s.riderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}
	for i := range riders {
		s.fillPhotoURL(&riders[i])
	}
	return &RidersPage{Items: riders, Total: total, Page: page, Limit: limit}, nil
}

func (s *riderService) GetByID(ctx context.Context, riderID int) (*models.Rider, error) {
	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return nil, ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}
	s.fillPhotoURL(rider)
	return rider, nil
}

func (s *riderService) UploadPhoto(ctx context.Context, actor models.AuthUser, riderID int, contentType string, photo io.Reader) (*models.Rider, error) {
	if s.uploader == nil {
		return nil, ErrPhotoStorageDisabled
	}

	rider, err := s.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("riders/%d/photo-%d", riderID, time.Now().Unix())
	uploaded, err := s.uploader.Upload(ctx, key, contentType, photo)
	if err != nil {
		return nil, fmt.Errorf("failed to upload rider photo: %w", err)
	}

	oldKey := rider.PhotoKey
	if err := s.riderRepo.UpdatePhotoKey(ctx, riderID, &uploaded.Key); err != nil {
		return nil, fmt.Errorf("failed to store rider photo key: %w", err)
	}
	if oldKey != nil && *oldKey != uploaded.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous rider photo",
				"rider_id", riderID, "key", *oldKey, "error", delErr)
		}
	}

	rider.PhotoKey = &uploaded.Key
	s.fillPhotoURL(rider)
	s.record(ctx, actor, "rider", &riderID, "photo_upload", map[string]interface{}{"key": uploaded.Key})
	return rider, nil
}

func (s *riderService) fillPhotoURL(rider *models.Rider) {
	if s.uploader == nil || rider.PhotoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*rider.PhotoKey)
	if url != "" {
		rider.PhotoURL = &url
	}
}
