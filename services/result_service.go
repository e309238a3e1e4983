package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

type CreateResultInput struct {
	EventID       int     `json:"event_id"`
	RiderID       int     `json:"rider_id"`
	Place         *int    `json:"place"`
	IsFinalist    *bool   `json:"is_finalist"`
	IsParticipant *bool   `json:"is_participant"`
	Points        *int    `json:"points"`
	Comment       *string `json:"comment"`
}

type UpdateResultInput struct {
	Place         *int    `json:"place"`
	IsFinalist    *bool   `json:"is_finalist"`
	IsParticipant *bool   `json:"is_participant"`
	Points        *int    `json:"points"`
	Comment       *string `json:"comment"`
}

type ResultService interface {
	Create(ctx context.Context, actor models.AuthUser, input CreateResultInput) (*models.Result, error)
	Update(ctx context.Context, actor models.AuthUser, resultID int, input UpdateResultInput) (*models.Result, error)
	Delete(ctx context.Context, actor models.AuthUser, resultID int) error
	ListByEvent(ctx context.Context, eventID int) ([]models.Result, error)
}

type resultService struct {
	auditRecorder
	resultRepo repositories.ResultRepository
	eventRepo  repositories.EventRepository
	season     SeasonService
}

func NewResultService(
	resultRepo repositories.ResultRepository,
	eventRepo repositories.EventRepository,
	auditRepo repositories.AuditRepository,
	season SeasonService,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		auditRecorder: auditRecorder{auditRepo: auditRepo, logger: logger},
		resultRepo:    resultRepo,
		eventRepo:     eventRepo,
		season:        season,
	}
}

func (s *resultService) Create(ctx context.Context, actor models.AuthUser, input CreateResultInput) (*models.Result, error) {
	if input.EventID <= 0 || input.RiderID <= 0 {
		return nil, newValidationError([]string{"event_id and rider_id are required"})
	}

	event, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event for result: %w", err)
	}

	result := &models.Result{
		EventID:       input.EventID,
		RiderID:       input.RiderID,
		Place:         input.Place,
		IsParticipant: true,
		Comment:       input.Comment,
	}
	if input.IsFinalist != nil {
		result.IsFinalist = *input.IsFinalist
	}
	if input.IsParticipant != nil {
		result.IsParticipant = *input.IsParticipant
	}

	// Очки либо задаются админом явно, либо считаются по таблице очков.
	if input.Points != nil {
		if !actor.CanOverridePoints() {
			return nil, ErrPointsOverrideForbidden
		}
		result.Points = *input.Points
	} else {
		result.Points = CalculatePoints(event.Level, result.Place, result.IsFinalist, result.IsParticipant, event.ParticipantsCount)
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultConflict):
			return nil, ErrResultConflict
		case errors.Is(err, repositories.ErrResultRefsInvalid):
			return nil, ErrResultRefsInvalid
		}
		return nil, fmt.Errorf("failed to create result: %w", err)
	}

	if err := s.season.Recalculate(ctx); err != nil {
		return nil, err
	}

	s.record(ctx, actor, "result", &result.ID, "create", map[string]interface{}{
		"event_id": result.EventID,
		"rider_id": result.RiderID,
		"points":   result.Points,
	})
	return result, nil
}

func (s *resultService) Update(ctx context.Context, actor models.AuthUser, resultID int, input UpdateResultInput) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if input.Points != nil && !actor.CanOverridePoints() {
		return nil, ErrPointsOverrideForbidden
	}

	if input.Place != nil {
		result.Place = input.Place
	}
	if input.IsFinalist != nil {
		result.IsFinalist = *input.IsFinalist
	}
	if input.IsParticipant != nil {
		result.IsParticipant = *input.IsParticipant
	}
	if input.Points != nil {
		result.Points = *input.Points
	}
	if input.Comment != nil {
		result.Comment = input.Comment
	}

	if err := s.resultRepo.Update(ctx, result); err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to update result: %w", err)
	}

	if err := s.season.Recalculate(ctx); err != nil {
		return nil, err
	}

	s.record(ctx, actor, "result", &resultID, "update", map[string]interface{}{
		"points": result.Points,
	})
	return result, nil
}

func (s *resultService) Delete(ctx context.Context, actor models.AuthUser, resultID int) error {
	if err := s.resultRepo.Delete(ctx, resultID); err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return ErrResultNotFound
		}
		return fmt.Errorf("failed to delete result: %w", err)
	}

	if err := s.season.Recalculate(ctx); err != nil {
		return err
	}

	s.record(ctx, actor, "result", &resultID, "delete", nil)
	return nil
}

func (s *resultService) ListByEvent(ctx context.Context, eventID int) ([]models.Result, error) {
	if eventID <= 0 {
		return nil, ErrEventIDRequired
	}
	results, err := s.resultRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}
