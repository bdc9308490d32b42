package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/thai-itinerary/internal/model"
)

func q(s string) string { return regexp.QuoteMeta(s) }

func newMock(t *testing.T) (*ItineraryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewItineraryRepo(db), mock
}

func karonRecord() *ItineraryRecord {
	dep := "09:30:00"
	return &ItineraryRecord{
		Name:           "Karon weekend",
		DurationNights: 2,
		Region:         model.RegionPhuket,
		Accommodations: []AccommodationRecord{{HotelID: 10, DayNumber: 1}},
		Transfers: []TransferRecord{{
			DayNumber: 1, FromLocationID: 2, ToLocationID: 1, Mode: model.TransferCar, DurationHours: 1, DepartureTime: &dep,
		}},
		Activities: []ItineraryActivityRecord{{ActivityID: 20, DayNumber: 1}},
	}
}

func idRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

func TestItineraryCreateWritesEverythingInOneTx(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id FROM hotels WHERE id IN (?)")).WithArgs(10).WillReturnRows(idRows(10))
	mock.ExpectQuery(q("SELECT id FROM activities WHERE id IN (?)")).WithArgs(20).WillReturnRows(idRows(20))
	mock.ExpectQuery(q("SELECT id FROM locations WHERE id IN (?,?)")).WithArgs(2, 1).WillReturnRows(idRows(1, 2))
	mock.ExpectExec(q("INSERT INTO itineraries")).
		WithArgs("Karon weekend", 2, "Phuket", sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(q("INSERT INTO accommodations")).
		WithArgs(7, 10, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO transfers")).
		WithArgs(7, 1, 2, 1, "car", 1.0, "09:30:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO itinerary_activities")).
		WithArgs(7, 20, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), karonRecord())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItineraryCreateMissingReferenceRollsBack(t *testing.T) {
	cases := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		field  string
		id     uint64
	}{
		{"hotel", func(m sqlmock.Sqlmock) {
			m.ExpectQuery(q("FROM hotels")).WillReturnRows(idRows())
		}, "hotel_id", 10},
		{"activity", func(m sqlmock.Sqlmock) {
			m.ExpectQuery(q("FROM hotels")).WillReturnRows(idRows(10))
			m.ExpectQuery(q("FROM activities")).WillReturnRows(idRows())
		}, "activity_id", 20},
		{"from location", func(m sqlmock.Sqlmock) {
			m.ExpectQuery(q("FROM hotels")).WillReturnRows(idRows(10))
			m.ExpectQuery(q("FROM activities")).WillReturnRows(idRows(20))
			m.ExpectQuery(q("FROM locations")).WillReturnRows(idRows(1))
		}, "from_location_id", 2},
		{"to location", func(m sqlmock.Sqlmock) {
			m.ExpectQuery(q("FROM hotels")).WillReturnRows(idRows(10))
			m.ExpectQuery(q("FROM activities")).WillReturnRows(idRows(20))
			m.ExpectQuery(q("FROM locations")).WillReturnRows(idRows(2))
		}, "to_location_id", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectBegin()
			tc.expect(mock)
			mock.ExpectRollback()

			_, err := repo.Create(context.Background(), karonRecord())
			var mr *MissingReferenceError
			require.ErrorAs(t, err, &mr)
			assert.Equal(t, tc.field, mr.Field)
			assert.Equal(t, tc.id, mr.ID)
			// No INSERT was expected, so any write would have failed the mock.
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestItineraryCreateChildFailureRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	rec := karonRecord()
	rec.Transfers, rec.Activities = nil, nil

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM hotels")).WillReturnRows(idRows(10))
	mock.ExpectExec(q("INSERT INTO itineraries")).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(q("INSERT INTO accommodations")).WillReturnError(&mysql.MySQLError{Number: 1452, Message: "fk"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), rec)
	var mr *MissingReferenceError
	require.ErrorAs(t, err, &mr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItineraryCreateWithoutChildren(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO itineraries")).WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), &ItineraryRecord{Name: "empty", DurationNights: 1, Region: model.RegionKrabi})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var itineraryCols = []string{"id", "name", "duration_nights", "region", "description", "is_recommended", "created_at"}

func TestItineraryGetByIDAttachesChildren(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	checkIn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("FROM itineraries WHERE id = ?")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(itineraryCols).AddRow(7, "Karon weekend", 2, "Phuket", nil, false, created))
	mock.ExpectQuery(q("FROM accommodations a")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "itinerary_id", "day_number", "hotel_id", "check_in_date", "check_out_date", "name", "rating", "location"}).
			AddRow(1, 7, 1, 10, checkIn, nil, "Karon Beach Resort", 4.5, "Karon"))
	mock.ExpectQuery(q("FROM transfers t")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "itinerary_id", "day_number", "transfer_type", "duration_hours", "departure_time",
			"f.id", "f.name", "f.region", "o.id", "o.name", "o.region"}).
			AddRow(1, 7, 1, "car", 1.0, "09:30:00", 2, "Phuket Airport", "Phuket", 1, "Karon", "Phuket"))
	mock.ExpectQuery(q("FROM itinerary_activities ia")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "itinerary_id", "day_number", "start_time", "ac.id", "name", "type", "duration_hours", "description"}).
			AddRow(1, 7, 1, nil, 20, "Big Buddha visit", "cultural", 2.0, nil))

	got, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Karon weekend", got.Name)
	assert.Nil(t, got.Description)

	require.Len(t, got.Accommodations, 1)
	a := got.Accommodations[0]
	assert.Equal(t, "Karon Beach Resort", a.Hotel.Name)
	assert.Equal(t, "Karon", a.Hotel.LocationName)
	require.NotNil(t, a.CheckInDate)
	assert.Equal(t, "2026-03-01", *a.CheckInDate)
	assert.Nil(t, a.CheckOutDate)

	require.Len(t, got.Transfers, 1)
	assert.Equal(t, "Phuket Airport", got.Transfers[0].FromLocation.Name)
	assert.Equal(t, model.TransferCar, got.Transfers[0].TransferType)

	require.Len(t, got.Activities, 1)
	assert.Equal(t, uint64(20), got.Activities[0].ActivityID)
	assert.Equal(t, model.ActivityCultural, got.Activities[0].Activity.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItineraryGetByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(q("FROM itineraries WHERE id = ?")).WithArgs(99).WillReturnRows(sqlmock.NewRows(itineraryCols))

	got, err := repo.GetByID(context.Background(), 99)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrItineraryNotFound)
}

func TestItineraryListRecommendedFiltersInSQL(t *testing.T) {
	repo, mock := newMock(t)
	krabi := model.RegionKrabi
	mock.ExpectQuery(q("WHERE is_recommended = TRUE AND duration_nights = ? AND region = ? ORDER BY id")).
		WithArgs(3, "Krabi").
		WillReturnRows(sqlmock.NewRows(itineraryCols))

	got, err := repo.ListRecommended(context.Background(), 3, &krabi)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItineraryListPaginates(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(q("FROM itineraries ORDER BY id LIMIT ? OFFSET ?")).WithArgs(2, 4).
		WillReturnRows(sqlmock.NewRows(itineraryCols).
			AddRow(5, "a", 2, "Phuket", nil, true, time.Now()).
			AddRow(6, "b", 3, "Krabi", "desc", false, time.Now()))

	got, err := repo.List(context.Background(), Page{Offset: 4, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(5), got[0].ID)
	require.NotNil(t, got[1].Description)
	assert.Equal(t, "desc", *got[1].Description)
}

func TestItineraryDelete(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM itineraries WHERE id = ?")).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM itineraries WHERE id = ?")).WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.ErrorIs(t, repo.Delete(context.Background(), 8), ErrItineraryNotFound)
}

func TestStorageErrorIsPassedThrough(t *testing.T) {
	repo, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectBegin().WillReturnError(boom)

	_, err := repo.Create(context.Background(), karonRecord())
	assert.ErrorIs(t, err, boom)
}
