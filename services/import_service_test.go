package services

import (
	"context"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/repositories"
)

func newImportFixture() (ImportService, *fakeSeason, *[]models.Result) {
	created := &[]models.Result{}
	resultRepo := &fakeResultRepo{
		createFn: func(ctx context.Context, result *models.Result) error {
			*created = append(*created, *result)
			return nil
		},
	}
	riderRepo := &fakeRiderRepo{
		getByNicknameFn: func(ctx context.Context, nickname string) (*models.Rider, error) {
			switch strings.ToLower(nickname) {
			case "whip":
				return &models.Rider{ID: 1, Nickname: "whip"}, nil
			case "tailgrab":
				return &models.Rider{ID: 2, Nickname: "tailgrab"}, nil
			}
			return nil, repositories.ErrRiderNotFound
		},
	}
	eventRepo := &fakeEventRepo{
		getByIDFn: func(ctx context.Context, id int) (*models.Event, error) {
			if id != 10 {
				return nil, repositories.ErrEventNotFound
			}
			return &models.Event{ID: 10, Level: models.LevelRegional}, nil
		},
	}
	season := &fakeSeason{}
	svc := NewImportService(resultRepo, riderRepo, eventRepo, &fakeAuditRepo{}, season, testLogger())
	return svc, season, created
}

func admin() models.AuthUser {
	return models.AuthUser{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
}

func editor() models.AuthUser {
	return models.AuthUser{ID: 2, Email: "editor@example.com", Role: models.RoleEditor}
}

func TestImportResultsCSV(t *testing.T) {
	convey.Convey("Given a CSV with valid and broken rows", t, func() {
		svc, season, created := newImportFixture()
		csv := strings.Join([]string{
			"event_id,rider_nickname,place,is_finalist,is_participant,points,comment",
			"10,whip,1,,,,",
			"10,ghost,2,,,,",
			"10,tailgrab,,true,,,made finals",
			"99,whip,1,,,,",
		}, "\n")

		report, err := svc.ImportResultsCSV(context.Background(), admin(), strings.NewReader(csv))

		convey.Convey("Valid rows are imported, broken ones reported by row number", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(report.Imported, convey.ShouldEqual, 2)
			convey.So(report.Skipped, convey.ShouldEqual, 2)
			convey.So(report.Errors, convey.ShouldHaveLength, 2)
			convey.So(report.Errors[0].Row, convey.ShouldEqual, 3)
			convey.So(report.Errors[0].Message, convey.ShouldContainSubstring, "rider not found")
			convey.So(report.Errors[1].Row, convey.ShouldEqual, 5)
			convey.So(report.Errors[1].Message, convey.ShouldEqual, "event not found")
		})

		convey.Convey("Blank points are computed from the event level", func() {
			convey.So((*created)[0].Points, convey.ShouldEqual, 200) // 1st place, regional
			convey.So((*created)[1].Points, convey.ShouldEqual, 50)  // finalist, regional
		})

		convey.Convey("The season is recalculated exactly once", func() {
			convey.So(season.calls, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given a CSV with a wrong header", t, func() {
		svc, season, _ := newImportFixture()
		csv := "event,rider,place\n10,whip,1"

		_, err := svc.ImportResultsCSV(context.Background(), admin(), strings.NewReader(csv))

		convey.Convey("The whole import is rejected without touching the season", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(season.calls, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given explicit points in a row", t, func() {
		csvBody := strings.Join([]string{
			"event_id,rider_nickname,place,is_finalist,is_participant,points,comment",
			"10,whip,1,,,777,",
		}, "\n")

		convey.Convey("An admin can override them", func() {
			svc, _, created := newImportFixture()
			report, err := svc.ImportResultsCSV(context.Background(), admin(), strings.NewReader(csvBody))
			convey.So(err, convey.ShouldBeNil)
			convey.So(report.Imported, convey.ShouldEqual, 1)
			convey.So((*created)[0].Points, convey.ShouldEqual, 777)
		})

		convey.Convey("An editor gets a row error instead", func() {
			svc, season, created := newImportFixture()
			report, err := svc.ImportResultsCSV(context.Background(), editor(), strings.NewReader(csvBody))
			convey.So(err, convey.ShouldBeNil)
			convey.So(report.Imported, convey.ShouldEqual, 0)
			convey.So(report.Errors, convey.ShouldHaveLength, 1)
			convey.So(report.Errors[0].Message, convey.ShouldContainSubstring, "admin")
			convey.So(*created, convey.ShouldBeEmpty)
			convey.So(season.calls, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given an empty file", t, func() {
		svc, _, _ := newImportFixture()

		_, err := svc.ImportResultsCSV(context.Background(), admin(), strings.NewReader(""))

		convey.Convey("A validation error is returned", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
