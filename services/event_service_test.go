package services

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

func newEventFixture(status models.EventStatus) (EventService, *fakeSeason, *fakeEventRepo) {
	eventRepo := &fakeEventRepo{
		createFn: func(ctx context.Context, event *models.Event) error {
			event.ID = 10
			return nil
		},
		getByIDFn: func(ctx context.Context, id int) (*models.Event, error) {
			if id != 10 {
				return nil, repositories.ErrEventNotFound
			}
			return &models.Event{ID: 10, Name: "Street Jam", Level: models.LevelLocal, Status: status}, nil
		},
		updateFn:       func(ctx context.Context, event *models.Event) error { return nil },
		updateStatusFn: func(ctx context.Context, id int, s models.EventStatus) error { return nil },
		deleteFn:       func(ctx context.Context, id int) error { return nil },
	}
	season := &fakeSeason{}
	svc := NewEventService(eventRepo, &fakeResultRepo{}, &fakeAuditRepo{}, season, testLogger())
	return svc, season, eventRepo
}

func TestEventCreate(t *testing.T) {
	convey.Convey("Given a valid draft event", t, func() {
		svc, season, _ := newEventFixture(models.EventStatusDraft)

		event, err := svc.Create(context.Background(), editor(), CreateEventInput{
			Name:      "Street Jam",
			DateStart: "2026-09-12",
			City:      "Kazan",
			Level:     "local",
		})

		convey.Convey("It is created as a draft and the season is recalculated", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(event.Status, convey.ShouldEqual, models.EventStatusDraft)
			convey.So(season.calls, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given an unknown level", t, func() {
		svc, _, _ := newEventFixture(models.EventStatusDraft)
		_, err := svc.Create(context.Background(), editor(), CreateEventInput{
			Name:      "Street Jam",
			DateStart: "2026-09-12",
			City:      "Kazan",
			Level:     "galactic",
		})
		convey.So(err, convey.ShouldEqual, ErrInvalidEventLevel)
	})

	convey.Convey("Given a malformed date", t, func() {
		svc, _, _ := newEventFixture(models.EventStatusDraft)
		_, err := svc.Create(context.Background(), editor(), CreateEventInput{
			Name:      "Street Jam",
			DateStart: "12.09.2026",
			City:      "Kazan",
			Level:     "local",
		})
		convey.So(errors.Is(err, ErrInvalidDate), convey.ShouldBeTrue)
	})

	convey.Convey("Given missing required fields", t, func() {
		svc, _, _ := newEventFixture(models.EventStatusDraft)
		_, err := svc.Create(context.Background(), editor(), CreateEventInput{})
		var validationErr *ValidationError
		convey.So(errors.As(err, &validationErr), convey.ShouldBeTrue)
		convey.So(validationErr.Problems, convey.ShouldHaveLength, 4)
	})
}

func TestEventUpdateRecalcPolicy(t *testing.T) {
	convey.Convey("Given a draft event", t, func() {
		svc, season, _ := newEventFixture(models.EventStatusDraft)

		_, err := svc.Update(context.Background(), editor(), 10, UpdateEventInput{ParticipantsCount: intPtr(55)})

		convey.Convey("Editing it does not touch the season", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(season.calls, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given a published event", t, func() {
		svc, season, _ := newEventFixture(models.EventStatusPublished)

		_, err := svc.Update(context.Background(), editor(), 10, UpdateEventInput{ParticipantsCount: intPtr(55)})

		convey.Convey("Editing it triggers a recalculation", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(season.calls, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given a published event taken back to draft", t, func() {
		svc, season, _ := newEventFixture(models.EventStatusPublished)
		draft := string(models.EventStatusDraft)

		event, err := svc.Update(context.Background(), editor(), 10, UpdateEventInput{Status: &draft})

		convey.Convey("Un-publishing shrinks the qualifying set, so the season is recalculated", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(event.Status, convey.ShouldEqual, models.EventStatusDraft)
			convey.So(season.calls, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Publishing an event always recalculates", t, func() {
		svc, season, _ := newEventFixture(models.EventStatusPublished)

		event, err := svc.Publish(context.Background(), editor(), 10)

		convey.So(err, convey.ShouldBeNil)
		convey.So(event.Status, convey.ShouldEqual, models.EventStatusPublished)
		convey.So(season.calls, convey.ShouldEqual, 1)
	})

	convey.Convey("Deleting an event recalculates too", t, func() {
		svc, season, _ := newEventFixture(models.EventStatusPublished)

		err := svc.Delete(context.Background(), editor(), 10)

		convey.So(err, convey.ShouldBeNil)
		convey.So(season.calls, convey.ShouldEqual, 1)
	})
}

func TestEventPublicListing(t *testing.T) {
	convey.Convey("Given a public events request with extra filters", t, func() {
		var captured repositories.ListEventsFilter
		eventRepo := &fakeEventRepo{
			listFn: func(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, int, error) {
				captured = filter
				return nil, 0, nil
			},
		}
		svc := NewEventService(eventRepo, &fakeResultRepo{}, &fakeAuditRepo{}, &fakeSeason{}, testLogger())

		_, err := svc.ListPublished(context.Background(), ListEventsInput{
			Status: "draft",
			Search: "jam",
			City:   "Kazan",
		})

		convey.Convey("The status is forced to published and search is dropped", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(captured.Status, convey.ShouldNotBeNil)
			convey.So(*captured.Status, convey.ShouldEqual, models.EventStatusPublished)
			convey.So(captured.Search, convey.ShouldBeNil)
			convey.So(captured.City, convey.ShouldNotBeNil)
		})
	})
}
