package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

type CreateEventInput struct {
	Name              string  `json:"name"`
	DateStart         string  `json:"date_start"`
	DateEnd           *string `json:"date_end"`
	City              string  `json:"city"`
	Level             string  `json:"level"`
	ParticipantsCount *int    `json:"participants_count"`
	Style             *string `json:"style"`
	HasBestTrick      *bool   `json:"has_best_trick"`
	SourceURL         *string `json:"source_url"`
	OrganizerContact  *string `json:"organizer_contact"`
	Status            *string `json:"status"`
}

type UpdateEventInput struct {
	Name              *string `json:"name"`
	DateStart         *string `json:"date_start"`
	DateEnd           *string `json:"date_end"`
	City              *string `json:"city"`
	Level             *string `json:"level"`
	ParticipantsCount *int    `json:"participants_count"`
	Style             *string `json:"style"`
	HasBestTrick      *bool   `json:"has_best_trick"`
	SourceURL         *string `json:"source_url"`
	OrganizerContact  *string `json:"organizer_contact"`
	Status            *string `json:"status"`
}

type ListEventsInput struct {
	Status   string
	Level    string
	City     string
	Search   string
	DateFrom string
	DateTo   string
	Page     int
	Limit    int
}

type EventsPage struct {
	Items []models.Event `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// PublicEvent — событие со списком результатов для публичной страницы.
type PublicEvent struct {
	Event   models.Event         `json:"event"`
	Results []models.EventResult `json:"results"`
}

type EventService interface {
	Create(ctx context.Context, actor models.AuthUser, input CreateEventInput) (*models.Event, error)
	Update(ctx context.Context, actor models.AuthUser, eventID int, input UpdateEventInput) (*models.Event, error)
	Publish(ctx context.Context, actor models.AuthUser, eventID int) (*models.Event, error)
	Delete(ctx context.Context, actor models.AuthUser, eventID int) error
	List(ctx context.Context, input ListEventsInput) (*EventsPage, error)
	ListPublished(ctx context.Context, input ListEventsInput) (*EventsPage, error)
	GetWithResults(ctx context.Context, eventID int) (*PublicEvent, error)
}

type eventService struct {
	auditRecorder
	eventRepo  repositories.EventRepository
	resultRepo repositories.ResultRepository
	season     SeasonService
}

func NewEventService(
	eventRepo repositories.EventRepository,
	resultRepo repositories.ResultRepository,
	auditRepo repositories.AuditRepository,
	season SeasonService,
	logger *slog.Logger,
) EventService {
	return &eventService{
		auditRecorder: auditRecorder{auditRepo: auditRepo, logger: logger},
		eventRepo:     eventRepo,
		resultRepo:    resultRepo,
		season:        season,
	}
}

func (s *eventService) Create(ctx context.Context, actor models.AuthUser, input CreateEventInput) (*models.Event, error) {
	var problems []string
	if input.Name == "" {
		problems = append(problems, "name is required")
	}
	if input.DateStart == "" {
		problems = append(problems, "date_start is required")
	}
	if input.City == "" {
		problems = append(problems, "city is required")
	}
	if input.Level == "" {
		problems = append(problems, "level is required")
	}
	if err := newValidationError(problems); err != nil {
		return nil, err
	}

	level := models.EventLevel(input.Level)
	if !level.Valid() {
		return nil, ErrInvalidEventLevel
	}

	status := models.EventStatusDraft
	if input.Status != nil && *input.Status != "" {
		status = models.EventStatus(*input.Status)
		if !status.Valid() {
			return nil, ErrInvalidEventStatus
		}
	}

	dateStart, err := parseDate(input.DateStart)
	if err != nil {
		return nil, err
	}
	dateEnd, err := parseOptionalDate(input.DateEnd)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:              input.Name,
		DateStart:         dateStart,
		DateEnd:           dateEnd,
		City:              &input.City,
		Level:             level,
		ParticipantsCount: input.ParticipantsCount,
		Style:             input.Style,
		SourceURL:         input.SourceURL,
		OrganizerContact:  input.OrganizerContact,
		Status:            status,
	}
	if input.HasBestTrick != nil {
		event.HasBestTrick = *input.HasBestTrick
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := s.season.Recalculate(ctx); err != nil {
		return nil, err
	}

	s.record(ctx, actor, "event", &event.ID, "create", map[string]interface{}{
		"name":   event.Name,
		"status": event.Status,
	})
	return event, nil
}

func (s *eventService) Update(ctx context.Context, actor models.AuthUser, eventID int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	wasPublished := event.Status == models.EventStatusPublished

	if input.Name != nil {
		event.Name = *input.Name
	}
	if input.DateStart != nil {
		dateStart, err := parseDate(*input.DateStart)
		if err != nil {
			return nil, err
		}
		event.DateStart = dateStart
	}
	if input.DateEnd != nil {
		dateEnd, err := parseOptionalDate(input.DateEnd)
		if err != nil {
			return nil, err
		}
		event.DateEnd = dateEnd
	}
	if input.City != nil {
		event.City = input.City
	}
	if input.Level != nil {
		level := models.EventLevel(*input.Level)
		if !level.Valid() {
			return nil, ErrInvalidEventLevel
		}
		event.Level = level
	}
	if input.ParticipantsCount != nil {
		event.ParticipantsCount = input.ParticipantsCount
	}
	if input.Style != nil {
		event.Style = input.Style
	}
	if input.HasBestTrick != nil {
		event.HasBestTrick = *input.HasBestTrick
	}
	if input.SourceURL != nil {
		event.SourceURL = input.SourceURL
	}
	if input.OrganizerContact != nil {
		event.OrganizerContact = input.OrganizerContact
	}
	if input.Status != nil {
		status := models.EventStatus(*input.Status)
		if !status.Valid() {
			return nil, ErrInvalidEventStatus
		}
		event.Status = status
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	// Пересчёт когда событие опубликовано либо только что снято с
	// публикации: уход из published меняет набор событий при политике
	// "только опубликованные". Правки черновиков рейтинг не трогают.
	if event.Status == models.EventStatusPublished || wasPublished {
		if err := s.season.Recalculate(ctx); err != nil {
			return nil, err
		}
	}

	s.record(ctx, actor, "event", &eventID, "update", map[string]interface{}{
		"name":   event.Name,
		"status": event.Status,
	})
	return event, nil
}

func (s *eventService) Publish(ctx context.Context, actor models.AuthUser, eventID int) (*models.Event, error) {
	if err := s.eventRepo.UpdateStatus(ctx, eventID, models.EventStatusPublished); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.season.Recalculate(ctx); err != nil {
		return nil, err
	}

	s.record(ctx, actor, "event", &eventID, "publish", nil)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, actor models.AuthUser, eventID int) error {
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	// Удаление каскадно сносит результаты события, суммы меняются.
	if err := s.season.Recalculate(ctx); err != nil {
		return err
	}

	s.record(ctx, actor, "event", &eventID, "delete", nil)
	return nil
}

func (s *eventService) List(ctx context.Context, input ListEventsInput) (*EventsPage, error) {
	page, limit := NormalizePage(input.Page, input.Limit)

	filter := repositories.ListEventsFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if input.Status != "" {
		status := models.EventStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidEventStatus
		}
		filter.Status = &status
	}
	if err := s.applyCommonFilters(&filter, input); err != nil {
		return nil, err
	}

	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &EventsPage{Items: events, Total: total, Page: page, Limit: limit}, nil
}

// ListPublished — публичный список: статус всегда published, фильтры только
// city/level.
func (s *eventService) ListPublished(ctx context.Context, input ListEventsInput) (*EventsPage, error) {
	input.Status = string(models.EventStatusPublished)
	input.Search = ""
	input.DateFrom = ""
	input.DateTo = ""
	return s.List(ctx, input)
}

func (s *eventService) GetWithResults(ctx context.Context, eventID int) (*PublicEvent, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.ListEventResults(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event results: %w", err)
	}
	return &PublicEvent{Event: *event, Results: results}, nil
}

func (s *eventService) getEvent(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *eventService) applyCommonFilters(filter *repositories.ListEventsFilter, input ListEventsInput) error {
	if input.Level != "" {
		level := models.EventLevel(input.Level)
		if !level.Valid() {
			return ErrInvalidEventLevel
		}
		filter.Level = &level
	}
	if input.City != "" {
		filter.City = &input.City
	}
	if input.Search != "" {
		filter.Search = &input.Search
	}
	if input.DateFrom != "" {
		from, err := parseDate(input.DateFrom)
		if err != nil {
			return err
		}
		filter.DateFrom = &from
	}
	if input.DateTo != "" {
		to, err := parseDate(input.DateTo)
		if err != nil {
			return err
		}
		filter.DateTo = &to
	}
	return nil
}
