package repositories

import (
	"context"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

type VehicleRepository struct {
	DB intdb.DBTX
}

const vehicleColumns = `id, owner_id, make, model, color, plate_number, seats, created_at`

func scanVehicle(rs rowScanner) (models.Vehicle, error) {
	var v models.Vehicle
	err := rs.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Color, &v.PlateNumber, &v.Seats, &v.CreatedAt)
	return v, err
}

func (r VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO vehicles (owner_id, make, model, color, plate_number, seats, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.OwnerID, v.Make, v.Model, v.Color, v.PlateNumber, v.Seats, v.CreatedAt)
	if err != nil {
		return err
	}
	v.ID, err = res.LastInsertId()
	return err
}

func (r VehicleRepository) GetByID(ctx context.Context, id int64) (models.Vehicle, error) {
	return scanVehicle(r.DB.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id))
}

func (r VehicleRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE owner_id = ? ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) Update(ctx context.Context, v models.Vehicle) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE vehicles SET make = ?, model = ?, color = ?, plate_number = ?, seats = ?
		WHERE id = ? AND owner_id = ?
	`, v.Make, v.Model, v.Color, v.PlateNumber, v.Seats, v.ID, v.OwnerID)
	return err
}

func (r VehicleRepository) Delete(ctx context.Context, id, ownerID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ? AND owner_id = ?`, id, ownerID)
	return err
}

// CountActiveTrips counts active trips still using the vehicle.
func (r VehicleRepository) CountActiveTrips(ctx context.Context, vehicleID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips WHERE vehicle_id = ? AND status = ?`, vehicleID, string(domain.TripActive)).Scan(&n)
	return n, err
}
