package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

type TripRepository struct {
	DB      intdb.DBTX
	Dialect intdb.Dialect
}

const tripColumns = `t.id, t.driver_id, t.vehicle_id, t.departure_location, t.arrival_location,
	t.departure_lat, t.departure_lng, t.arrival_lat, t.arrival_lng, t.departure_time,
	t.available_seats, t.price_per_seat, t.status, t.description, t.created_at, t.updated_at`

// bookedSeatsExpr is the seat total held by non-cancelled bookings of trip t.
const bookedSeatsExpr = `COALESCE((SELECT SUM(bk.seats_booked) FROM bookings bk WHERE bk.trip_id = t.id AND bk.status <> '` +
	string(domain.BookingCancelled) + `'), 0)`

func scanTrip(rs rowScanner, extra ...any) (models.Trip, error) {
	var t models.Trip
	var vehicleID sql.NullInt64
	var depLat, depLng, arrLat, arrLng sql.NullFloat64
	dest := []any{
		&t.ID, &t.DriverID, &vehicleID, &t.DepartureLocation, &t.ArrivalLocation,
		&depLat, &depLng, &arrLat, &arrLng, &t.DepartureTime,
		&t.AvailableSeats, &t.PricePerSeat, &t.Status, &t.Description, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := rs.Scan(append(dest, extra...)...); err != nil {
		return models.Trip{}, err
	}
	t.VehicleID = intdb.Int64Ptr(vehicleID)
	t.DepartureLat = intdb.Float64Ptr(depLat)
	t.DepartureLng = intdb.Float64Ptr(depLng)
	t.ArrivalLat = intdb.Float64Ptr(arrLat)
	t.ArrivalLng = intdb.Float64Ptr(arrLng)
	return t, nil
}

func (r TripRepository) Create(ctx context.Context, t *models.Trip) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO trips (
			driver_id, vehicle_id, departure_location, arrival_location,
			departure_lat, departure_lng, arrival_lat, arrival_lng,
			departure_time, available_seats, price_per_seat, status, description,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.DriverID, intdb.NullInt64(t.VehicleID), t.DepartureLocation, t.ArrivalLocation,
		intdb.NullFloat64(t.DepartureLat), intdb.NullFloat64(t.DepartureLng),
		intdb.NullFloat64(t.ArrivalLat), intdb.NullFloat64(t.ArrivalLng),
		t.DepartureTime, t.AvailableSeats, t.PricePerSeat.StringFixed(2), string(t.Status), t.Description,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

// GetByID loads the bare trip row. With forUpdate inside a MySQL transaction
// the row stays locked until commit.
func (r TripRepository) GetByID(ctx context.Context, id int64, forUpdate bool) (models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = ?`
	if forUpdate {
		query += r.Dialect.ForUpdate()
	}
	return scanTrip(r.DB.QueryRowContext(ctx, query, id))
}

// GetDetail loads the trip with driver name and remaining seats.
func (r TripRepository) GetDetail(ctx context.Context, id int64) (models.Trip, error) {
	var booked int
	var driverName string
	t, err := scanTrip(r.DB.QueryRowContext(ctx, `
		SELECT `+tripColumns+`, `+bookedSeatsExpr+`, u.name
		FROM trips t
		JOIN users u ON u.id = t.driver_id
		WHERE t.id = ?
	`, id), &booked, &driverName)
	if err != nil {
		return t, err
	}
	t.RemainingSeats = t.AvailableSeats - booked
	t.DriverName = driverName
	return t, nil
}

// BookedSeats sums seats held by non-cancelled bookings of the trip.
func (r TripRepository) BookedSeats(ctx context.Context, tripID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(seats_booked), 0)
		FROM bookings
		WHERE trip_id = ? AND status <> ?
	`, tripID, string(domain.BookingCancelled)).Scan(&n)
	return n, err
}

// RemainingSeats computes capacity minus seats held, sql.ErrNoRows when the trip is missing.
func (r TripRepository) RemainingSeats(ctx context.Context, tripID int64) (models.Availability, error) {
	out := models.Availability{TripID: tripID}
	err := r.DB.QueryRowContext(ctx, `
		SELECT t.available_seats, `+bookedSeatsExpr+`
		FROM trips t
		WHERE t.id = ?
	`, tripID).Scan(&out.AvailableSeats, &out.BookedSeats)
	if err != nil {
		return out, err
	}
	out.RemainingSeats = out.AvailableSeats - out.BookedSeats
	return out, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern matches s literally anywhere in a column. '!' is the escape
// character in both dialects since backslash is itself special in MySQL strings.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r TripRepository) where(f models.TripFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	if f.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, string(f.Status))
	}
	if f.DriverID > 0 {
		conds = append(conds, "t.driver_id = ?")
		args = append(args, f.DriverID)
	}
	if !f.IncludePast {
		conds = append(conds, "t.departure_time > ?")
		args = append(args, f.Now)
	}
	if from := strings.ToLower(strings.TrimSpace(f.From)); from != "" {
		conds = append(conds, "LOWER(t.departure_location) LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(from))
	}
	if to := strings.ToLower(strings.TrimSpace(f.To)); to != "" {
		conds = append(conds, "LOWER(t.arrival_location) LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(to))
	}
	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		conds = append(conds, "t.departure_time >= ? AND t.departure_time < ?")
		args = append(args, day, day.Add(24*time.Hour))
	}
	if f.MinSeats > 0 {
		conds = append(conds, "t.available_seats - "+bookedSeatsExpr+" >= ?")
		args = append(args, f.MinSeats)
	}
	if f.MaxPrice != nil {
		conds = append(conds, r.Dialect.Numeric("t.price_per_seat")+" <= ?")
		args = append(args, f.MaxPrice.InexactFloat64())
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Search lists trips matching f ordered by departure, with remaining seats filled in.
func (r TripRepository) Search(ctx context.Context, f models.TripFilter) ([]models.Trip, int, error) {
	where, args := r.where(f)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips t`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Page.PageSize, f.Page.Offset())
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+tripColumns+`, `+bookedSeatsExpr+`, u.name
		FROM trips t
		JOIN users u ON u.id = t.driver_id`+where+`
		ORDER BY t.departure_time ASC, t.id ASC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		var booked int
		var driverName string
		t, err := scanTrip(rows, &booked, &driverName)
		if err != nil {
			return out, 0, err
		}
		t.RemainingSeats = t.AvailableSeats - booked
		t.DriverName = driverName
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// Update writes every mutable column of t.
func (r TripRepository) Update(ctx context.Context, t models.Trip) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE trips SET
			departure_location = ?, arrival_location = ?, departure_time = ?,
			available_seats = ?, price_per_seat = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, t.DepartureLocation, t.ArrivalLocation, t.DepartureTime,
		t.AvailableSeats, t.PricePerSeat.StringFixed(2), t.Description, t.UpdatedAt, t.ID)
	return err
}

func (r TripRepository) UpdateStatus(ctx context.Context, id int64, status domain.TripStatus, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE trips SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	return err
}

// CountByStatus returns trip totals keyed by status.
func (r TripRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countGrouped(ctx, r.DB, `SELECT status, COUNT(*) FROM trips GROUP BY status`)
}

func countGrouped(ctx context.Context, q intdb.DBTX, query string) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return out, err
		}
		out[key] = n
	}
	return out, rows.Err()
}
