package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	riderRepo  repositories.RiderRepository
	eventRepo  repositories.EventRepository
	resultRepo repositories.ResultRepository
}

func NewDashboardService(
	riderRepo repositories.RiderRepository,
	eventRepo repositories.EventRepository,
	resultRepo repositories.ResultRepository,
) DashboardService {
	return &dashboardService{
		riderRepo:  riderRepo,
		eventRepo:  eventRepo,
		resultRepo: resultRepo,
	}
}

// Stats собирает счётчики для админской панели параллельно: пять
// независимых COUNT-запросов, первая ошибка отменяет остальные.
func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.riderRepo.Count(ctx)
		stats.RidersTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.eventRepo.Count(ctx, nil)
		stats.EventsTotal = n
		return err
	})
	g.Go(func() error {
		published := models.EventStatusPublished
		n, err := s.eventRepo.Count(ctx, &published)
		stats.PublishedEvents = n
		return err
	})
	g.Go(func() error {
		n, err := s.resultRepo.Count(ctx)
		stats.ResultsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.riderRepo.CountWithSeasonPoints(ctx)
		stats.RidersWithSeason = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return stats, nil
}
