package repositories

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var tripCols = []string{
	"id", "driver_id", "vehicle_id", "departure_location", "arrival_location",
	"departure_lat", "departure_lng", "arrival_lat", "arrival_lng", "departure_time",
	"available_seats", "price_per_seat", "status", "description", "created_at", "updated_at",
}

func tripRow(dep time.Time) []driver.Value {
	return []driver.Value{
		int64(5), int64(2), nil, "Yogyakarta", "Semarang",
		-7.79, 110.36, nil, nil, dep,
		int64(3), []byte("12.50"), "active", "", dep, dep,
	}
}

func TestTripGetByIDLocksRowOnMySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM trips t WHERE t.id = \? FOR UPDATE$`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(tripCols).AddRow(tripRow(dep)...))

	repo := TripRepository{DB: db, Dialect: intdb.DialectMySQL}
	trip, err := repo.GetByID(context.Background(), 5, true)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if trip.Status != domain.TripActive || trip.AvailableSeats != 3 {
		t.Fatalf("unexpected trip %+v", trip)
	}
	if trip.VehicleID != nil || trip.ArrivalLat != nil {
		t.Fatalf("NULL columns should stay nil")
	}
	if trip.DepartureLat == nil || *trip.DepartureLat != -7.79 {
		t.Fatalf("departure lat not scanned")
	}
	if !trip.PricePerSeat.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("price scanned as %s", trip.PricePerSeat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripGetByIDNoLockOnSQLite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM trips t WHERE t.id = \?$`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(tripCols).AddRow(tripRow(time.Now())...))

	repo := TripRepository{DB: db, Dialect: intdb.DialectSQLite}
	if _, err := repo.GetByID(context.Background(), 5, true); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripSearchBuildsFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	day := time.Date(2026, 4, 3, 15, 0, 0, 0, time.UTC)
	maxPrice := decimal.RequireFromString("20")
	f := models.TripFilter{
		From:     " Yogya ",
		Date:     &day,
		MinSeats: 2,
		MaxPrice: &maxPrice,
		Status:   domain.TripActive,
		Now:      now,
		Page:     domain.NewPagination(2, 10, 20, 100),
	}
	dayStart := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	args := []any{"active", now, "%yogya%", dayStart, dayStart.Add(24 * time.Hour), 2, 20.0}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM trips t WHERE t.status = \? AND t.departure_time > \? AND LOWER\(t.departure_location\) LIKE \? ESCAPE '!' AND t.departure_time >= \? AND t.departure_time < \? AND t.available_seats - COALESCE.* >= \? AND t.price_per_seat <= \?`).
		WithArgs(sqlmockArgs(args)...).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(11))

	cols := append(append([]string{}, tripCols...), "booked", "name")
	mock.ExpectQuery(`ORDER BY t.departure_time ASC, t.id ASC\s+LIMIT \? OFFSET \?`).
		WithArgs(sqlmockArgs(append(args, 10, 10))...).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(append(tripRow(day), int64(1), "Driver")...))

	repo := TripRepository{DB: db, Dialect: intdb.DialectMySQL}
	items, total, err := repo.Search(context.Background(), f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 11 || len(items) != 1 {
		t.Fatalf("got total=%d items=%d", total, len(items))
	}
	if items[0].RemainingSeats != 2 || items[0].DriverName != "Driver" {
		t.Fatalf("derived fields not filled: %+v", items[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripSearchCastsPriceOnSQLite(t *testing.T) {
	repo := TripRepository{Dialect: intdb.DialectSQLite}
	maxPrice := decimal.NewFromInt(5)
	where, _ := repo.where(models.TripFilter{MaxPrice: &maxPrice, IncludePast: true})
	if where != " WHERE CAST(t.price_per_seat AS REAL) <= ?" {
		t.Fatalf("unexpected where %q", where)
	}
}

func TestBookedSeatsIgnoresCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(seats_booked\), 0\) FROM bookings WHERE trip_id = \? AND status <> \?`).
		WithArgs(int64(4), "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(5))

	repo := TripRepository{DB: db, Dialect: intdb.DialectMySQL}
	n, err := repo.BookedSeats(context.Background(), 4)
	if err != nil {
		t.Fatalf("BookedSeats: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func sqlmockArgs(in []any) []driver.Value {
	out := make([]driver.Value, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case int:
			out[i] = int64(x)
		default:
			out[i] = v
		}
	}
	return out
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"solo":    "%solo%",
		"100%":    "%100!%%",
		"a_b":     "%a!_b%",
		"wow!":    "%wow!!%",
		"c:\\tmp": "%c:\\tmp%",
	}
	for in, want := range cases {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
