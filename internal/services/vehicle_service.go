package services

import (
	"context"
	"strings"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/utils"
)

const maxVehicleSeats = 8

type VehicleService struct {
	Base
}

func normalizeVehicle(v *models.Vehicle) error {
	v.Make = utils.NormalizeSpace(v.Make)
	v.Model = utils.NormalizeSpace(v.Model)
	v.Color = utils.NormalizeSpace(v.Color)
	v.PlateNumber = strings.ToUpper(utils.NormalizeSpace(v.PlateNumber))
	switch {
	case v.Make == "":
		return domain.ValidationError{Field: "make", Msg: "required"}
	case v.Model == "":
		return domain.ValidationError{Field: "model", Msg: "required"}
	case v.PlateNumber == "":
		return domain.ValidationError{Field: "plateNumber", Msg: "required"}
	case v.Seats < 1 || v.Seats > maxVehicleSeats:
		return domain.ValidationError{Field: "seats", Msg: "must be between 1 and 8"}
	}
	return nil
}

func (s VehicleService) ListMine(ctx context.Context, ownerID int64) ([]models.Vehicle, error) {
	out, err := s.vehicles(s.DB).ListByOwner(ctx, ownerID)
	return out, internal(err)
}

func (s VehicleService) Create(ctx context.Context, ownerID int64, v models.Vehicle) (models.Vehicle, error) {
	if err := normalizeVehicle(&v); err != nil {
		return models.Vehicle{}, err
	}
	v.ID = 0
	v.OwnerID = ownerID
	v.CreatedAt = s.now()
	if err := s.vehicles(s.DB).Create(ctx, &v); err != nil {
		if intdb.IsUniqueViolation(err) {
			return models.Vehicle{}, domain.ConflictError{Resource: "vehicle", Msg: "plate number already registered", Err: err}
		}
		return models.Vehicle{}, internal(err)
	}
	return v, nil
}

func (s VehicleService) owned(ctx context.Context, id, ownerID int64) (models.Vehicle, error) {
	v, err := s.vehicles(s.DB).GetByID(ctx, id)
	if err != nil {
		return v, notFound("vehicle", err)
	}
	if v.OwnerID != ownerID {
		return v, domain.ForbiddenError{Msg: "vehicle belongs to another user"}
	}
	return v, nil
}

func (s VehicleService) Update(ctx context.Context, id, ownerID int64, in models.Vehicle) (models.Vehicle, error) {
	cur, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return cur, err
	}
	if err := normalizeVehicle(&in); err != nil {
		return models.Vehicle{}, err
	}
	in.ID, in.OwnerID, in.CreatedAt = cur.ID, cur.OwnerID, cur.CreatedAt
	if err := s.vehicles(s.DB).Update(ctx, in); err != nil {
		if intdb.IsUniqueViolation(err) {
			return models.Vehicle{}, domain.ConflictError{Resource: "vehicle", Msg: "plate number already registered", Err: err}
		}
		return models.Vehicle{}, internal(err)
	}
	return in, nil
}

// Delete removes a vehicle that no active trip still uses.
func (s VehicleService) Delete(ctx context.Context, id, ownerID int64) error {
	if _, err := s.owned(ctx, id, ownerID); err != nil {
		return err
	}
	n, err := s.vehicles(s.DB).CountActiveTrips(ctx, id)
	if err != nil {
		return internal(err)
	}
	if n > 0 {
		return domain.InvalidOperationError{Msg: "vehicle is assigned to an active trip"}
	}
	return internal(s.vehicles(s.DB).Delete(ctx, id, ownerID))
}
