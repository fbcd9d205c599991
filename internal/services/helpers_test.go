package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/db/dbtest"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	t    *testing.T
	ctx  context.Context
	base Base
	seq  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	return &fixture{
		t:   t,
		ctx: context.Background(),
		base: Base{
			DB:      db,
			Dialect: intdb.DialectSQLite,
			Now:     func() time.Time { return testNow },
		},
	}
}

func (f *fixture) bookingService() BookingService {
	return BookingService{Base: f.base, CancelCutoff: 2 * time.Hour}
}

func (f *fixture) tripService() TripService {
	return TripService{Base: f.base}
}

func (f *fixture) user(name string) models.User {
	f.t.Helper()
	f.seq++
	u := models.User{
		Name:         name,
		Email:        fmt.Sprintf("user%d@example.com", f.seq),
		PasswordHash: "x",
		Role:         domain.RoleUser,
		Status:       domain.UserActive,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(f.t, repositories.UserRepository{DB: f.base.DB}.Create(f.ctx, &u))
	return u
}

// trip inserts an active trip departing after the given delay with the given capacity.
func (f *fixture) trip(driverID int64, seats int, departIn time.Duration) models.Trip {
	f.t.Helper()
	tr := models.Trip{
		DriverID:          driverID,
		DepartureLocation: "Yogyakarta",
		ArrivalLocation:   "Semarang",
		DepartureTime:     testNow.Add(departIn),
		AvailableSeats:    seats,
		PricePerSeat:      decimal.RequireFromString("12.50"),
		Status:            domain.TripActive,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
	require.NoError(f.t, repositories.TripRepository{DB: f.base.DB, Dialect: intdb.DialectSQLite}.Create(f.ctx, &tr))
	return tr
}

func (f *fixture) remaining(tripID int64) int {
	f.t.Helper()
	av, err := f.bookingService().RemainingSeats(f.ctx, tripID)
	require.NoError(f.t, err)
	return av.RemainingSeats
}

func (f *fixture) countBookings(tripID int64) int {
	f.t.Helper()
	var n int
	require.NoError(f.t, f.base.DB.QueryRowContext(f.ctx, `SELECT COUNT(*) FROM bookings WHERE trip_id = ?`, tripID).Scan(&n))
	return n
}

func bookingFilter(passengerID int64, typ string, page domain.Pagination) models.BookingFilter {
	return models.BookingFilter{PassengerID: passengerID, Type: typ, Page: page}
}
