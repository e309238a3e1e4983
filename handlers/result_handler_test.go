package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/services"
)

type fakeResultService struct {
	listByEventFn func(ctx context.Context, eventID int) ([]models.Result, error)
}

func (f *fakeResultService) Create(ctx context.Context, actor models.AuthUser, input services.CreateResultInput) (*models.Result, error) {
	return nil, nil
}

func (f *fakeResultService) Update(ctx context.Context, actor models.AuthUser, resultID int, input services.UpdateResultInput) (*models.Result, error) {
	return nil, nil
}

func (f *fakeResultService) Delete(ctx context.Context, actor models.AuthUser, resultID int) error {
	return nil
}

func (f *fakeResultService) ListByEvent(ctx context.Context, eventID int) ([]models.Result, error) {
	return f.listByEventFn(ctx, eventID)
}

func TestResultListByEventParam(t *testing.T) {
	convey.Convey("Given the admin results listing", t, func() {
		var gotEventID int
		svc := &fakeResultService{
			listByEventFn: func(ctx context.Context, eventID int) ([]models.Result, error) {
				gotEventID = eventID
				if eventID <= 0 {
					return nil, services.ErrEventIDRequired
				}
				return []models.Result{}, nil
			},
		}
		handler := NewResultHandler(svc, nil, nil)

		serve := func(target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			handler.ListByEvent(rec, req)
			return rec
		}

		convey.Convey("The eventId query param is honored", func() {
			rec := serve("/api/admin/results?eventId=10")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(gotEventID, convey.ShouldEqual, 10)
		})

		convey.Convey("The legacy event_id spelling still works", func() {
			rec := serve("/api/admin/results?event_id=11")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(gotEventID, convey.ShouldEqual, 11)
		})

		convey.Convey("A missing event id is a bad request", func() {
			rec := serve("/api/admin/results")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}
