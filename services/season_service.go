package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexkachalkov/scootrate/repositories"
)

// SeasonNotifier получает уведомление после успешного пересчёта. Реализуется
// websocket-хабом; nil отключает уведомления.
type SeasonNotifier interface {
	RatingUpdated(updatedAt time.Time)
}

// SeasonConfig — параметры скользящего окна сезона.
type SeasonConfig struct {
	WindowDays int
	PointsCap  int
	// PublishedOnly ограничивает агрегацию опубликованными событиями.
	// По умолчанию false: учитываются и черновики, как в историческом
	// поведении, где публичные списки фильтруют статус, а пересчёт — нет.
	PublishedOnly bool
}

const (
	DefaultSeasonWindowDays = 90
	DefaultSeasonPointsCap  = 1000
)

// SeasonService пересчитывает кэш сезонных очков целиком: удаление старых
// строк, оконная агрегация и запись капированных сумм выполняются в одной
// транзакции, поэтому читатели рейтинга никогда не видят пустой кэш.
type SeasonService interface {
	Recalculate(ctx context.Context) error
}

type seasonService struct {
	db         *sql.DB
	resultRepo repositories.ResultRepository
	seasonRepo repositories.SeasonRepository
	cfg        SeasonConfig
	notifier   SeasonNotifier
	logger     *slog.Logger
	now        func() time.Time
}

func NewSeasonService(
	db *sql.DB,
	resultRepo repositories.ResultRepository,
	seasonRepo repositories.SeasonRepository,
	cfg SeasonConfig,
	notifier SeasonNotifier,
	logger *slog.Logger,
) SeasonService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultSeasonWindowDays
	}
	if cfg.PointsCap <= 0 {
		cfg.PointsCap = DefaultSeasonPointsCap
	}
	return &seasonService{
		db:         db,
		resultRepo: resultRepo,
		seasonRepo: seasonRepo,
		cfg:        cfg,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Recalculate перечитывает результаты событий, стартовавших не раньше
// cutoff = сегодня − WindowDays. Верхней границы по дате нет: события с датой
// в будущем тоже учитываются — намеренная совместимость с историческим
// поведением, а не упущение. Повторный запуск без изменений данных даёт
// идентичный кэш.
func (s *seasonService) Recalculate(ctx context.Context) error {
	started := s.now()
	// Cutoff — календарная дата: events.date_start хранится как DATE, и
	// сравнение с полночью оставляет граничный день в окне независимо от
	// времени запуска пересчёта.
	today := time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, started.Location())
	cutoff := today.AddDate(0, 0, -s.cfg.WindowDays)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("season recalculation: failed to begin transaction: %w", err)
	}

	if err := s.recalculateTx(ctx, tx, cutoff, started); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("season recalculation rollback failed", slog.Any("error", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("season recalculation: failed to commit: %w", err)
	}

	s.logger.Info("season points recalculated",
		slog.Time("cutoff", cutoff),
		slog.Int("window_days", s.cfg.WindowDays),
		slog.Int("points_cap", s.cfg.PointsCap),
	)

	if s.notifier != nil {
		s.notifier.RatingUpdated(started)
	}
	return nil
}

func (s *seasonService) recalculateTx(ctx context.Context, tx *sql.Tx, cutoff, updatedAt time.Time) error {
	if err := s.seasonRepo.DeleteAll(ctx, tx); err != nil {
		return fmt.Errorf("season recalculation: failed to clear cache: %w", err)
	}

	totals, err := s.resultRepo.SumPointsByRider(ctx, tx, cutoff, s.cfg.PublishedOnly)
	if err != nil {
		return fmt.Errorf("season recalculation: failed to aggregate points: %w", err)
	}

	for _, total := range totals {
		capped := total.Total
		if capped > s.cfg.PointsCap {
			capped = s.cfg.PointsCap
		}
		if err := s.seasonRepo.Upsert(ctx, tx, total.RiderID, capped, updatedAt); err != nil {
			return fmt.Errorf("season recalculation: failed to upsert rider %d: %w", total.RiderID, err)
		}
	}
	return nil
}
