package services

import (
	"context"
	"time"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

// Общие фейки репозиториев для тестов сервисного слоя. Каждый тест
// настраивает только нужные ему функции; невызванные методы паникуют
// nil-разыменованием, что сразу указывает на неожиданный вызов.

type fakeRiderRepo struct {
	createFn                func(ctx context.Context, rider *models.Rider) error
	getByIDFn               func(ctx context.Context, id int) (*models.Rider, error)
	getByNicknameFn         func(ctx context.Context, nickname string) (*models.Rider, error)
	updateFn                func(ctx context.Context, rider *models.Rider) error
	updatePhotoKeyFn        func(ctx context.Context, id int, photoKey *string) error
	deleteFn                func(ctx context.Context, id int) error
	listFn                  func(ctx context.Context, filter repositories.ListRidersFilter) ([]models.Rider, int, error)
	ratingFn                func(ctx context.Context, filter repositories.RatingFilter) ([]models.RatingItem, int, error)
	profileByIDFn           func(ctx context.Context, id int) (*models.RatingItem, error)
	countFn                 func(ctx context.Context) (int, error)
	countWithSeasonPointsFn func(ctx context.Context) (int, error)
}

func (f *fakeRiderRepo) Create(ctx context.Context, rider *models.Rider) error {
	return f.createFn(ctx, rider)
}

func (f *fakeRiderRepo) GetByID(ctx context.Context, id int) (*models.Rider, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeRiderRepo) GetByNickname(ctx context.Context, nickname string) (*models.Rider, error) {
	return f.getByNicknameFn(ctx, nickname)
}

func (f *fakeRiderRepo) Update(ctx context.Context, rider *models.Rider) error {
	return f.updateFn(ctx, rider)
}

func (f *fakeRiderRepo) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	return f.updatePhotoKeyFn(ctx, id, photoKey)
}

func (f *fakeRiderRepo) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeRiderRepo) List(ctx context.Context, filter repositories.ListRidersFilter) ([]models.Rider, int, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeRiderRepo) Rating(ctx context.Context, filter repositories.RatingFilter) ([]models.RatingItem, int, error) {
	return f.ratingFn(ctx, filter)
}

func (f *fakeRiderRepo) ProfileByID(ctx context.Context, id int) (*models.RatingItem, error) {
	return f.profileByIDFn(ctx, id)
}

func (f *fakeRiderRepo) Count(ctx context.Context) (int, error) {
	return f.countFn(ctx)
}

func (f *fakeRiderRepo) CountWithSeasonPoints(ctx context.Context) (int, error) {
	return f.countWithSeasonPointsFn(ctx)
}

type fakeResultRepo struct {
	createFn            func(ctx context.Context, result *models.Result) error
	getByIDFn           func(ctx context.Context, id int) (*models.Result, error)
	updateFn            func(ctx context.Context, result *models.Result) error
	deleteFn            func(ctx context.Context, id int) error
	listByEventFn       func(ctx context.Context, eventID int) ([]models.Result, error)
	listEventResultsFn  func(ctx context.Context, eventID int) ([]models.EventResult, error)
	listRecentByRiderFn func(ctx context.Context, riderID int, limit int) ([]models.RiderSeasonResult, error)
	sumPointsByRiderFn  func(ctx context.Context, exec repositories.SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error)
	countFn             func(ctx context.Context) (int, error)
}

func (f *fakeResultRepo) Create(ctx context.Context, result *models.Result) error {
	return f.createFn(ctx, result)
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id int) (*models.Result, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeResultRepo) Update(ctx context.Context, result *models.Result) error {
	return f.updateFn(ctx, result)
}

func (f *fakeResultRepo) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeResultRepo) ListByEvent(ctx context.Context, eventID int) ([]models.Result, error) {
	return f.listByEventFn(ctx, eventID)
}

func (f *fakeResultRepo) ListEventResults(ctx context.Context, eventID int) ([]models.EventResult, error) {
	return f.listEventResultsFn(ctx, eventID)
}

func (f *fakeResultRepo) ListRecentByRider(ctx context.Context, riderID int, limit int) ([]models.RiderSeasonResult, error) {
	return f.listRecentByRiderFn(ctx, riderID, limit)
}

func (f *fakeResultRepo) SumPointsByRider(ctx context.Context, exec repositories.SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error) {
	return f.sumPointsByRiderFn(ctx, exec, cutoff, publishedOnly)
}

func (f *fakeResultRepo) Count(ctx context.Context) (int, error) {
	return f.countFn(ctx)
}

type fakeEventRepo struct {
	createFn       func(ctx context.Context, event *models.Event) error
	getByIDFn      func(ctx context.Context, id int) (*models.Event, error)
	updateFn       func(ctx context.Context, event *models.Event) error
	updateStatusFn func(ctx context.Context, id int, status models.EventStatus) error
	deleteFn       func(ctx context.Context, id int) error
	listFn         func(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, int, error)
	countFn        func(ctx context.Context, status *models.EventStatus) (int, error)
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	return f.createFn(ctx, event)
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	return f.updateFn(ctx, event)
}

func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	return f.updateStatusFn(ctx, id, status)
}

func (f *fakeEventRepo) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeEventRepo) List(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, int, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeEventRepo) Count(ctx context.Context, status *models.EventStatus) (int, error) {
	return f.countFn(ctx, status)
}

type seasonUpsert struct {
	riderID int
	points  int
}

type fakeSeasonRepo struct {
	deleteAllErr error
	upsertErr    error
	deletes      int
	upserts      []seasonUpsert
}

func (f *fakeSeasonRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	f.deletes++
	return f.deleteAllErr
}

func (f *fakeSeasonRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, riderID int, points int, updatedAt time.Time) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, seasonUpsert{riderID: riderID, points: points})
	return nil
}

// fakeAuditRepo просто копит записи, ошибок не возвращает.
type fakeAuditRepo struct {
	entries []models.AuditEntry
}

func (f *fakeAuditRepo) Insert(ctx context.Context, entry *models.AuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

// fakeSeason считает вызовы пересчёта вместо работы с базой.
type fakeSeason struct {
	calls int
	err   error
}

func (f *fakeSeason) Recalculate(ctx context.Context) error {
	f.calls++
	return f.err
}
