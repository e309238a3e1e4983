package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

// ImportRowError — ошибка конкретной строки CSV. Номер строки считается
// с единицы по заголовку включительно, как видит файл человек.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportReport struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

type ImportService interface {
	ImportResultsCSV(ctx context.Context, actor models.AuthUser, file io.Reader) (*ImportReport, error)
}

type importService struct {
	auditRecorder
	resultRepo repositories.ResultRepository
	riderRepo  repositories.RiderRepository
	eventRepo  repositories.EventRepository
	season     SeasonService
}

func NewImportService(
	resultRepo repositories.ResultRepository,
	riderRepo repositories.RiderRepository,
	eventRepo repositories.EventRepository,
	auditRepo repositories.AuditRepository,
	season SeasonService,
	logger *slog.Logger,
) ImportService {
	return &importService{
		auditRecorder: auditRecorder{auditRepo: auditRepo, logger: logger},
		resultRepo:    resultRepo,
		riderRepo:     riderRepo,
		eventRepo:     eventRepo,
		season:        season,
	}
}

var csvHeader = []string{"event_id", "rider_nickname", "place", "is_finalist", "is_participant", "points", "comment"}

// ImportResultsCSV читает CSV построчно: валидные строки превращаются в
// результаты, невалидные накапливаются в отчёте. Пересчёт сезона делается
// один раз в конце, а не после каждой строки.
func (s *importService) ImportResultsCSV(ctx context.Context, actor models.AuthUser, file io.Reader) (*ImportReport, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, newValidationError([]string{"empty or unreadable CSV file"})
	}
	if err := checkCSVHeader(header); err != nil {
		return nil, err
	}

	report := &ImportReport{}
	// Кэш событий, чтобы не дёргать базу на каждую строку одного события.
	events := map[int]*models.Event{}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, ImportRowError{Row: row, Message: "malformed CSV row"})
			continue
		}

		result, rowErr := s.parseRow(ctx, actor, record, events)
		if rowErr != "" {
			report.Skipped++
			report.Errors = append(report.Errors, ImportRowError{Row: row, Message: rowErr})
			continue
		}

		if err := s.resultRepo.Create(ctx, result); err != nil {
			switch {
			case errors.Is(err, repositories.ErrResultConflict):
				report.Skipped++
				report.Errors = append(report.Errors, ImportRowError{Row: row, Message: "result already exists for this event and rider"})
				continue
			case errors.Is(err, repositories.ErrResultRefsInvalid):
				report.Skipped++
				report.Errors = append(report.Errors, ImportRowError{Row: row, Message: "event or rider does not exist"})
				continue
			}
			return nil, fmt.Errorf("failed to import row %d: %w", row, err)
		}
		report.Imported++
	}

	if report.Imported > 0 {
		if err := s.season.Recalculate(ctx); err != nil {
			return nil, err
		}
	}

	s.record(ctx, actor, "result", nil, "import_csv", map[string]interface{}{
		"imported": report.Imported,
		"skipped":  report.Skipped,
	})
	return report, nil
}

func checkCSVHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return newValidationError([]string{"unexpected CSV header, want: " + strings.Join(csvHeader, ",")})
	}
	for i, want := range csvHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return newValidationError([]string{"unexpected CSV header, want: " + strings.Join(csvHeader, ",")})
		}
	}
	return nil
}

// parseRow валидирует одну строку. Возвращает текст ошибки строки или
// готовый к вставке результат.
func (s *importService) parseRow(ctx context.Context, actor models.AuthUser, record []string, events map[int]*models.Event) (*models.Result, string) {
	eventID, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil || eventID <= 0 {
		return nil, "invalid event_id"
	}

	event, ok := events[eventID]
	if !ok {
		event, err = s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return nil, "event not found"
			}
			return nil, "failed to load event"
		}
		events[eventID] = event
	}

	nickname := strings.TrimSpace(record[1])
	if nickname == "" {
		return nil, "rider_nickname is required"
	}
	rider, err := s.riderRepo.GetByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return nil, "rider not found: " + nickname
		}
		return nil, "failed to load rider"
	}

	result := &models.Result{
		EventID:       eventID,
		RiderID:       rider.ID,
		IsParticipant: true,
	}

	if v := strings.TrimSpace(record[2]); v != "" {
		place, err := strconv.Atoi(v)
		if err != nil || place <= 0 {
			return nil, "invalid place"
		}
		result.Place = &place
	}
	if v := strings.TrimSpace(record[3]); v != "" {
		flag, err := parseCSVBool(v)
		if err != nil {
			return nil, "invalid is_finalist"
		}
		result.IsFinalist = flag
	}
	if v := strings.TrimSpace(record[4]); v != "" {
		flag, err := parseCSVBool(v)
		if err != nil {
			return nil, "invalid is_participant"
		}
		result.IsParticipant = flag
	}

	if v := strings.TrimSpace(record[5]); v != "" {
		if !actor.CanOverridePoints() {
			return nil, "explicit points require admin role"
		}
		points, err := strconv.Atoi(v)
		if err != nil || points < 0 {
			return nil, "invalid points"
		}
		result.Points = points
	} else {
		result.Points = CalculatePoints(event.Level, result.Place, result.IsFinalist, result.IsParticipant, event.ParticipantsCount)
	}

	if v := strings.TrimSpace(record[6]); v != "" {
		comment := v
		result.Comment = &comment
	}

	return result, ""
}

func parseCSVBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("not a bool: %q", v)
}
