package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smartystreets/goconvey/convey"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

type notifierSpy struct {
	calls []time.Time
}

func (n *notifierSpy) RatingUpdated(at time.Time) {
	n.calls = append(n.calls, at)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSeasonFixture(t *testing.T, cfg SeasonConfig, totals []models.RiderPointsTotal) (*seasonService, *fakeSeasonRepo, *fakeResultRepo, *notifierSpy, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	seasonRepo := &fakeSeasonRepo{}
	resultRepo := &fakeResultRepo{
		sumPointsByRiderFn: func(ctx context.Context, exec repositories.SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error) {
			return totals, nil
		},
	}
	notifier := &notifierSpy{}

	svc := NewSeasonService(db, resultRepo, seasonRepo, cfg, notifier, testLogger()).(*seasonService)
	svc.now = func() time.Time { return date(2026, time.August, 29) }
	return svc, seasonRepo, resultRepo, notifier, mock
}

func TestSeasonRecalculate(t *testing.T) {
	convey.Convey("Given riders with summed points inside the window", t, func() {
		totals := []models.RiderPointsTotal{
			{RiderID: 1, Total: 1200},
			{RiderID: 2, Total: 350},
		}
		svc, seasonRepo, _, notifier, mock := newSeasonFixture(t, SeasonConfig{WindowDays: 90, PointsCap: 1000}, totals)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := svc.Recalculate(context.Background())

		convey.Convey("The cache is rebuilt with capped totals", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(seasonRepo.deletes, convey.ShouldEqual, 1)
			convey.So(seasonRepo.upserts, convey.ShouldResemble, []seasonUpsert{
				{riderID: 1, points: 1000},
				{riderID: 2, points: 350},
			})
		})

		convey.Convey("The transaction is committed and the notifier fires once", func() {
			convey.So(mock.ExpectationsWereMet(), convey.ShouldBeNil)
			convey.So(notifier.calls, convey.ShouldHaveLength, 1)
		})
	})

	convey.Convey("Given the configured window", t, func() {
		var gotCutoff time.Time
		var gotPublishedOnly bool

		svc, _, resultRepo, _, mock := newSeasonFixture(t, SeasonConfig{WindowDays: 90, PointsCap: 1000, PublishedOnly: true}, nil)
		resultRepo.sumPointsByRiderFn = func(ctx context.Context, exec repositories.SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error) {
			gotCutoff = cutoff
			gotPublishedOnly = publishedOnly
			return nil, nil
		}

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := svc.Recalculate(context.Background())

		convey.Convey("The cutoff is now minus the window and the publish policy is passed through", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(gotCutoff, convey.ShouldResemble, date(2026, time.May, 31))
			convey.So(gotPublishedOnly, convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a recalculation in the middle of the day", t, func() {
		var gotCutoff time.Time

		svc, _, resultRepo, _, mock := newSeasonFixture(t, SeasonConfig{WindowDays: 90, PointsCap: 1000}, nil)
		svc.now = func() time.Time {
			return time.Date(2026, time.August, 29, 15, 4, 5, 0, time.UTC)
		}
		resultRepo.sumPointsByRiderFn = func(ctx context.Context, exec repositories.SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error) {
			gotCutoff = cutoff
			return nil, nil
		}

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := svc.Recalculate(context.Background())

		convey.Convey("The cutoff is the calendar date, so a boundary-day event stays in the window", func() {
			convey.So(err, convey.ShouldBeNil)
			// events.date_start — DATE, сравнение идёт с полуночью.
			convey.So(gotCutoff, convey.ShouldResemble, date(2026, time.May, 31))
			convey.So(gotCutoff.After(date(2026, time.May, 31)), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given an aggregation failure mid-transaction", t, func() {
		svc, seasonRepo, resultRepo, notifier, mock := newSeasonFixture(t, SeasonConfig{WindowDays: 90, PointsCap: 1000}, nil)
		resultRepo.sumPointsByRiderFn = func(ctx context.Context, exec repositories.SQLExecutor, cutoff time.Time, publishedOnly bool) ([]models.RiderPointsTotal, error) {
			return nil, errors.New("boom")
		}

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := svc.Recalculate(context.Background())

		convey.Convey("The transaction is rolled back and nothing is published", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(mock.ExpectationsWereMet(), convey.ShouldBeNil)
			convey.So(seasonRepo.upserts, convey.ShouldBeEmpty)
			convey.So(notifier.calls, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given an upsert failure", t, func() {
		totals := []models.RiderPointsTotal{{RiderID: 1, Total: 10}}
		svc, seasonRepo, _, notifier, mock := newSeasonFixture(t, SeasonConfig{WindowDays: 90, PointsCap: 1000}, totals)
		seasonRepo.upsertErr = errors.New("disk is full")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := svc.Recalculate(context.Background())

		convey.Convey("The whole recalculation is atomic", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(mock.ExpectationsWereMet(), convey.ShouldBeNil)
			convey.So(notifier.calls, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given two consecutive runs over the same data", t, func() {
		totals := []models.RiderPointsTotal{{RiderID: 7, Total: 420}}
		svc, seasonRepo, _, _, mock := newSeasonFixture(t, SeasonConfig{WindowDays: 90, PointsCap: 1000}, totals)

		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectCommit()

		err1 := svc.Recalculate(context.Background())
		err2 := svc.Recalculate(context.Background())

		convey.Convey("The result is identical both times", func() {
			convey.So(err1, convey.ShouldBeNil)
			convey.So(err2, convey.ShouldBeNil)
			convey.So(seasonRepo.deletes, convey.ShouldEqual, 2)
			convey.So(seasonRepo.upserts, convey.ShouldResemble, []seasonUpsert{
				{riderID: 7, points: 420},
				{riderID: 7, points: 420},
			})
		})
	})
}
