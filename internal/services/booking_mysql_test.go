package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var mockTripCols = []string{
	"id", "driver_id", "vehicle_id", "departure_location", "arrival_location",
	"departure_lat", "departure_lng", "arrival_lat", "arrival_lng", "departure_time",
	"available_seats", "price_per_seat", "status", "description", "created_at", "updated_at",
}

func newMySQLMock(t *testing.T) (BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	svc := BookingService{Base: Base{
		DB:      db,
		Dialect: intdb.DialectMySQL,
		Now:     func() time.Time { return testNow },
	}}
	return svc, mock
}

func expectLockedTrip(mock sqlmock.Sqlmock, seats int64) {
	dep := testNow.Add(24 * time.Hour)
	mock.ExpectQuery(`FROM trips t WHERE t.id = \? FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(mockTripCols).AddRow(
			int64(5), int64(2), nil, "A", "B", nil, nil, nil, nil, dep,
			seats, []byte("12.50"), "active", "", testNow, testNow,
		))
}

func TestCreateBookingMySQLLocksTripAndInserts(t *testing.T) {
	svc, mock := newMySQLMock(t)

	mock.ExpectBegin()
	expectLockedTrip(mock, 3)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE trip_id = \? AND passenger_id = \?`).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(seats_booked\), 0\)`).
		WithArgs(int64(5), "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(int64(5), int64(7), int64(1), "12.50", "confirmed", "pending", testNow, testNow).
		WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM bookings b\s+JOIN users p`).
		WithArgs(int64(40)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trip_id", "passenger_id", "seats_booked", "total_price", "status", "payment_status", "created_at", "updated_at",
			"p_name", "departure_location", "arrival_location", "departure_time", "price_per_seat", "t_status", "driver_id", "d_name",
		}).AddRow(
			int64(40), int64(5), int64(7), int64(1), []byte("12.50"), "confirmed", "pending", testNow, testNow,
			"Passenger", "A", "B", testNow.Add(24*time.Hour), []byte("12.50"), "active", int64(2), "Driver",
		))

	b, err := svc.CreateBooking(context.Background(), 5, 7, 1)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.ID != 40 || b.Trip == nil || b.Trip.DriverName != "Driver" {
		t.Fatalf("unexpected booking %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingMySQLCapacityRollsBack(t *testing.T) {
	svc, mock := newMySQLMock(t)

	mock.ExpectBegin()
	expectLockedTrip(mock, 3)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(seats_booked\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), 5, 7, 1)
	if !domain.IsCapacityExceeded(err) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingMySQLDuplicateKeyIsConflict(t *testing.T) {
	svc, mock := newMySQLMock(t)

	mock.ExpectBegin()
	expectLockedTrip(mock, 3)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(seats_booked\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '5-7'"})
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), 5, 7, 1)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingMySQLMissingTrip(t *testing.T) {
	svc, mock := newMySQLMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM trips t WHERE t.id = \? FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), 5, 7, 1)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var mockBookingCols = []string{
	"id", "trip_id", "passenger_id", "seats_booked", "total_price", "status", "payment_status", "created_at", "updated_at",
}

func mockBookingRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(mockBookingCols).AddRow(
		int64(7), int64(5), int64(9), int64(1), []byte("12.50"), status, "pending", testNow, testNow,
	)
}

func mockDetailRow(id int64, status, payment string) *sqlmock.Rows {
	return sqlmock.NewRows(append(append([]string{}, mockBookingCols...),
		"p_name", "departure_location", "arrival_location", "departure_time", "price_per_seat", "t_status", "driver_id", "d_name",
	)).AddRow(
		id, int64(5), int64(9), int64(1), []byte("12.50"), status, payment, testNow, testNow,
		"Passenger", "A", "B", testNow.Add(24*time.Hour), []byte("12.50"), "active", int64(2), "Driver",
	)
}

func TestDriverPaymentUpdateLocksTripBeforeBooking(t *testing.T) {
	svc, mock := newMySQLMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings b WHERE b.id = \?$`).
		WithArgs(int64(7)).
		WillReturnRows(mockBookingRow("confirmed"))
	expectLockedTrip(mock, 3)
	mock.ExpectQuery(`FROM bookings b WHERE b.id = \? FOR UPDATE$`).
		WithArgs(int64(7)).
		WillReturnRows(mockBookingRow("confirmed"))
	mock.ExpectExec(`UPDATE bookings SET payment_status = \?`).
		WithArgs("paid", testNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM bookings b\s+JOIN users p`).
		WithArgs(int64(7)).
		WillReturnRows(mockDetailRow(7, "confirmed", "paid"))

	b, err := svc.UpdatePaymentStatus(context.Background(), 7, 2, domain.PaymentPaid)
	if err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}
	if b.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("unexpected booking %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPassengerCancelLocksTripBeforeBooking(t *testing.T) {
	svc, mock := newMySQLMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings b WHERE b.id = \?$`).
		WithArgs(int64(7)).
		WillReturnRows(mockBookingRow("confirmed"))
	expectLockedTrip(mock, 3)
	mock.ExpectQuery(`FROM bookings b WHERE b.id = \? FOR UPDATE$`).
		WithArgs(int64(7)).
		WillReturnRows(mockBookingRow("confirmed"))
	mock.ExpectExec(`UPDATE bookings SET status = \?`).
		WithArgs("cancelled", testNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM bookings b\s+JOIN users p`).
		WithArgs(int64(7)).
		WillReturnRows(mockDetailRow(7, "cancelled", "pending"))

	b, err := svc.CancelBooking(context.Background(), 7, 9)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if b.Status != domain.BookingCancelled {
		t.Fatalf("unexpected booking %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
