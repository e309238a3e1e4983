package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smartystreets/goconvey/convey"
)

func TestSeasonRepository(t *testing.T) {
	convey.Convey("Given a season points cache", t, func() {
		db, mock, err := sqlmock.New()
		convey.So(err, convey.ShouldBeNil)
		defer db.Close()

		repo := NewPostgresSeasonRepository(db)
		now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

		convey.Convey("DeleteAll wipes the whole table", func() {
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM season_points`)).
				WillReturnResult(sqlmock.NewResult(0, 3))

			err := repo.DeleteAll(context.Background(), nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(mock.ExpectationsWereMet(), convey.ShouldBeNil)
		})

		convey.Convey("Upsert inserts or replaces the rider row", func() {
			mock.ExpectExec(`(?s)INSERT INTO season_points.+ON CONFLICT \(rider_id\) DO UPDATE`).
				WithArgs(7, 420, now).
				WillReturnResult(sqlmock.NewResult(0, 1))

			err := repo.Upsert(context.Background(), nil, 7, 420, now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(mock.ExpectationsWereMet(), convey.ShouldBeNil)
		})

		convey.Convey("Both methods run on a transaction when one is given", func() {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM season_points`)).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()

			tx, err := db.Begin()
			convey.So(err, convey.ShouldBeNil)
			convey.So(repo.DeleteAll(context.Background(), tx), convey.ShouldBeNil)
			convey.So(tx.Commit(), convey.ShouldBeNil)
			convey.So(mock.ExpectationsWereMet(), convey.ShouldBeNil)
		})
	})
}
