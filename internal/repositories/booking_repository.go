package repositories

import (
	"context"
	"strings"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

type BookingRepository struct {
	DB      intdb.DBTX
	Dialect intdb.Dialect
}

const bookingColumns = `b.id, b.trip_id, b.passenger_id, b.seats_booked, b.total_price, b.status, b.payment_status, b.created_at, b.updated_at`

// bookingDetailJoin enriches a booking with passenger, trip and driver info.
const bookingDetailJoin = `
	FROM bookings b
	JOIN users p ON p.id = b.passenger_id
	JOIN trips t ON t.id = b.trip_id
	JOIN users d ON d.id = t.driver_id`

const bookingDetailColumns = bookingColumns + `, p.name,
	t.departure_location, t.arrival_location, t.departure_time, t.price_per_seat, t.status, t.driver_id, d.name`

func scanBooking(rs rowScanner) (models.Booking, error) {
	var b models.Booking
	err := rs.Scan(&b.ID, &b.TripID, &b.PassengerID, &b.SeatsBooked, &b.TotalPrice, &b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func scanBookingDetail(rs rowScanner) (models.Booking, error) {
	var b models.Booking
	bt := &models.BookingTrip{}
	err := rs.Scan(
		&b.ID, &b.TripID, &b.PassengerID, &b.SeatsBooked, &b.TotalPrice, &b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt,
		&b.PassengerName,
		&bt.DepartureLocation, &bt.ArrivalLocation, &bt.DepartureTime, &bt.PricePerSeat, &bt.Status, &bt.DriverID, &bt.DriverName,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.Trip = bt
	return b, nil
}

func (r BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (trip_id, passenger_id, seats_booked, total_price, status, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.TripID, b.PassengerID, b.SeatsBooked, b.TotalPrice.StringFixed(2), string(b.Status), string(b.PaymentStatus), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

// GetByID loads the bare booking row, locking it when forUpdate is set on MySQL.
func (r BookingRepository) GetByID(ctx context.Context, id int64, forUpdate bool) (models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	if forUpdate {
		query += r.Dialect.ForUpdate()
	}
	return scanBooking(r.DB.QueryRowContext(ctx, query, id))
}

func (r BookingRepository) GetDetail(ctx context.Context, id int64) (models.Booking, error) {
	return scanBookingDetail(r.DB.QueryRowContext(ctx, `SELECT `+bookingDetailColumns+bookingDetailJoin+` WHERE b.id = ?`, id))
}

// ExistsForTripPassenger reports any booking, whatever its status, by the passenger on the trip.
func (r BookingRepository) ExistsForTripPassenger(ctx context.Context, tripID, passengerID int64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE trip_id = ? AND passenger_id = ?`, tripID, passengerID).Scan(&n)
	return n > 0, err
}

// ListByPassenger returns the passenger's bookings, newest first.
func (r BookingRepository) ListByPassenger(ctx context.Context, f models.BookingFilter) ([]models.Booking, int, error) {
	conds := []string{"b.passenger_id = ?"}
	args := []any{f.PassengerID}
	if f.Status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, string(f.Status))
	}
	switch f.Type {
	case "upcoming":
		conds = append(conds, "t.departure_time > ?")
		args = append(args, f.Now)
	case "past":
		conds = append(conds, "t.departure_time <= ?")
		args = append(args, f.Now)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b JOIN trips t ON t.id = b.trip_id`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Page.PageSize, f.Page.Offset())
	rows, err := r.DB.QueryContext(ctx, `SELECT `+bookingDetailColumns+bookingDetailJoin+where+`
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBookingDetail(rows)
		if err != nil {
			return out, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// ListByTrip returns every booking on the trip with passenger names, oldest first.
func (r BookingRepository) ListByTrip(ctx context.Context, tripID int64) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+bookingDetailColumns+bookingDetailJoin+` WHERE b.trip_id = ? ORDER BY b.created_at ASC, b.id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBookingDetail(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	return err
}

func (r BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE bookings SET payment_status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	return err
}

// CancelForTrip cancels every open booking on a cancelled trip and refunds paid ones.
func (r BookingRepository) CancelForTrip(ctx context.Context, tripID int64, now time.Time) (int64, error) {
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET payment_status = ?, updated_at = ?
		WHERE trip_id = ? AND status IN (?, ?) AND payment_status = ?
	`, string(domain.PaymentRefunded), now, tripID,
		string(domain.BookingPending), string(domain.BookingConfirmed), string(domain.PaymentPaid)); err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE trip_id = ? AND status IN (?, ?)
	`, string(domain.BookingCancelled), now, tripID, string(domain.BookingPending), string(domain.BookingConfirmed))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CompleteForTrip marks confirmed bookings of a completed trip as completed.
func (r BookingRepository) CompleteForTrip(ctx context.Context, tripID int64, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE trip_id = ? AND status = ?
	`, string(domain.BookingCompleted), now, tripID, string(domain.BookingConfirmed))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasParticipation reports whether the user holds a non-cancelled booking on the trip.
func (r BookingRepository) HasParticipation(ctx context.Context, tripID, userID int64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE trip_id = ? AND passenger_id = ? AND status <> ?
	`, tripID, userID, string(domain.BookingCancelled)).Scan(&n)
	return n > 0, err
}

func (r BookingRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.DB, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
}
