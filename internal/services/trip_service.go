package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/utils"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type TripService struct {
	Base
}

// Create publishes a trip driven by driverID.
func (s TripService) Create(ctx context.Context, driverID int64, in models.Trip) (models.Trip, error) {
	in.DepartureLocation = utils.NormalizeSpace(in.DepartureLocation)
	in.ArrivalLocation = utils.NormalizeSpace(in.ArrivalLocation)
	in.Description = strings.TrimSpace(in.Description)
	now := s.now()

	switch {
	case in.DepartureLocation == "":
		return models.Trip{}, domain.ValidationError{Field: "departureLocation", Msg: "required"}
	case in.ArrivalLocation == "":
		return models.Trip{}, domain.ValidationError{Field: "arrivalLocation", Msg: "required"}
	case !in.DepartureTime.After(now):
		return models.Trip{}, domain.ValidationError{Field: "departureTime", Msg: "must be in the future"}
	case in.AvailableSeats < 1:
		return models.Trip{}, domain.ValidationError{Field: "availableSeats", Msg: "must be at least 1"}
	case in.PricePerSeat.IsNegative():
		return models.Trip{}, domain.ValidationError{Field: "pricePerSeat", Msg: "must not be negative"}
	}

	var vehicle *models.Vehicle
	if in.VehicleID != nil {
		v, err := s.vehicles(s.DB).GetByID(ctx, *in.VehicleID)
		if err != nil || v.OwnerID != driverID {
			if err != nil && !isNoRows(err) {
				return models.Trip{}, internal(err)
			}
			return models.Trip{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle not found among your vehicles"}
		}
		if in.AvailableSeats > v.Seats {
			return models.Trip{}, domain.ValidationError{Field: "availableSeats", Msg: "exceeds the vehicle's seats"}
		}
		vehicle = &v
	}

	trip := models.Trip{
		DriverID:          driverID,
		VehicleID:         in.VehicleID,
		DepartureLocation: in.DepartureLocation,
		ArrivalLocation:   in.ArrivalLocation,
		DepartureLat:      in.DepartureLat,
		DepartureLng:      in.DepartureLng,
		ArrivalLat:        in.ArrivalLat,
		ArrivalLng:        in.ArrivalLng,
		DepartureTime:     in.DepartureTime.UTC().Truncate(time.Second),
		AvailableSeats:    in.AvailableSeats,
		PricePerSeat:      in.PricePerSeat.Round(2),
		Status:            domain.TripActive,
		Description:       in.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.trips(s.DB).Create(ctx, &trip); err != nil {
		return models.Trip{}, internal(err)
	}
	s.event(ctx, "trip", "create", "trip published", zap.Int64("trip_id", trip.ID))

	out, err := s.Get(ctx, trip.ID)
	if err != nil {
		return trip, err
	}
	out.Vehicle = vehicle
	return out, nil
}

// Search lists trips. Status defaults to active and past departures are hidden unless requested.
func (s TripService) Search(ctx context.Context, f models.TripFilter) (domain.Page[models.Trip], error) {
	if f.Status == "" {
		f.Status = domain.TripActive
	} else if !f.Status.IsValid() {
		return domain.Page[models.Trip]{}, domain.ValidationError{Field: "status", Msg: "unknown trip status"}
	}
	if f.MinSeats < 0 {
		return domain.Page[models.Trip]{}, domain.ValidationError{Field: "seats", Msg: "must not be negative"}
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return domain.Page[models.Trip]{}, domain.ValidationError{Field: "max_price", Msg: "must not be negative"}
	}
	if f.Page.PageSize == 0 {
		f.Page = domain.NewPagination(f.Page.Page, 0, DefaultPageSize, MaxPageSize)
	}
	f.Now = s.now()
	return s.search(ctx, f)
}

// ListByDriver returns every trip of the driver, past ones included.
func (s TripService) ListByDriver(ctx context.Context, driverID int64, status domain.TripStatus, page domain.Pagination) (domain.Page[models.Trip], error) {
	if status != "" && !status.IsValid() {
		return domain.Page[models.Trip]{}, domain.ValidationError{Field: "status", Msg: "unknown trip status"}
	}
	return s.search(ctx, models.TripFilter{DriverID: driverID, Status: status, IncludePast: true, Now: s.now(), Page: page})
}

func (s TripService) search(ctx context.Context, f models.TripFilter) (domain.Page[models.Trip], error) {
	items, total, err := s.trips(s.DB).Search(ctx, f)
	if err != nil {
		return domain.Page[models.Trip]{}, internal(err)
	}
	f.Page.Total = total
	return domain.Page[models.Trip]{Items: items, Pagination: f.Page}, nil
}

// Get returns the trip with driver name, vehicle and remaining seats.
func (s TripService) Get(ctx context.Context, id int64) (models.Trip, error) {
	t, err := s.trips(s.DB).GetDetail(ctx, id)
	if err != nil {
		return t, notFound("trip", err)
	}
	if t.VehicleID != nil {
		v, err := s.vehicles(s.DB).GetByID(ctx, *t.VehicleID)
		if err == nil {
			t.Vehicle = &v
		} else if !isNoRows(err) {
			return t, internal(err)
		}
	}
	return t, nil
}

// Update edits an active trip owned by driverID. Capacity cannot drop below seats already held.
func (s TripService) Update(ctx context.Context, id, driverID int64, upd models.TripUpdate) (models.Trip, error) {
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		trips := s.trips(tx)
		t, err := trips.GetByID(ctx, id, true)
		if err != nil {
			return notFound("trip", err)
		}
		if t.DriverID != driverID {
			return domain.ForbiddenError{Msg: "only the driver can edit this trip"}
		}
		if t.Status.IsTerminal() {
			return domain.InvalidOperationError{Msg: "a " + string(t.Status) + " trip can no longer be edited"}
		}

		now := s.now()
		if upd.DepartureLocation != nil {
			if t.DepartureLocation = utils.NormalizeSpace(*upd.DepartureLocation); t.DepartureLocation == "" {
				return domain.ValidationError{Field: "departureLocation", Msg: "required"}
			}
		}
		if upd.ArrivalLocation != nil {
			if t.ArrivalLocation = utils.NormalizeSpace(*upd.ArrivalLocation); t.ArrivalLocation == "" {
				return domain.ValidationError{Field: "arrivalLocation", Msg: "required"}
			}
		}
		if upd.DepartureTime != nil {
			if !upd.DepartureTime.After(now) {
				return domain.ValidationError{Field: "departureTime", Msg: "must be in the future"}
			}
			t.DepartureTime = upd.DepartureTime.UTC().Truncate(time.Second)
		}
		if upd.PricePerSeat != nil {
			if upd.PricePerSeat.IsNegative() {
				return domain.ValidationError{Field: "pricePerSeat", Msg: "must not be negative"}
			}
			t.PricePerSeat = upd.PricePerSeat.Round(2)
		}
		if upd.Description != nil {
			t.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.AvailableSeats != nil {
			seats := *upd.AvailableSeats
			if seats < 1 {
				return domain.ValidationError{Field: "availableSeats", Msg: "must be at least 1"}
			}
			if t.VehicleID != nil {
				v, err := s.vehicles(tx).GetByID(ctx, *t.VehicleID)
				if err != nil && !isNoRows(err) {
					return err
				}
				if err == nil && seats > v.Seats {
					return domain.ValidationError{Field: "availableSeats", Msg: "exceeds the vehicle's seats"}
				}
			}
			booked, err := trips.BookedSeats(ctx, id)
			if err != nil {
				return err
			}
			if seats < booked {
				return domain.CapacityExceededError{Requested: booked, Remaining: seats}
			}
			t.AvailableSeats = seats
		}
		t.UpdatedAt = now
		return trips.Update(ctx, t)
	})
	if err != nil {
		return models.Trip{}, internal(err)
	}
	s.event(ctx, "trip", "update", "trip edited", zap.Int64("trip_id", id))
	return s.Get(ctx, id)
}

// UpdateStatus moves a trip along the transition table and cascades to its bookings
// in the same transaction. Admins may act on any trip.
func (s TripService) UpdateStatus(ctx context.Context, id int64, rc domain.RequestContext, target domain.TripStatus) (models.Trip, error) {
	if !target.IsValid() {
		return models.Trip{}, domain.ValidationError{Field: "status", Msg: "unknown trip status"}
	}

	var cascaded int64
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		t, err := s.trips(tx).GetByID(ctx, id, true)
		if err != nil {
			return notFound("trip", err)
		}
		if t.DriverID != rc.UserID && !rc.IsAdmin() {
			return domain.ForbiddenError{Msg: "only the driver can change this trip's status"}
		}
		if t.Status.IsTerminal() {
			return domain.InvalidOperationError{Msg: "trip is already " + string(t.Status)}
		}
		if !t.Status.CanTransitionTo(target) {
			return domain.InvalidOperationError{Msg: "cannot change trip from " + string(t.Status) + " to " + string(target)}
		}

		now := s.now()
		if err := s.trips(tx).UpdateStatus(ctx, id, target, now); err != nil {
			return err
		}
		switch target {
		case domain.TripCompleted:
			cascaded, err = s.bookings(tx).CompleteForTrip(ctx, id, now)
		case domain.TripCancelled:
			cascaded, err = s.bookings(tx).CancelForTrip(ctx, id, now)
		}
		return err
	})
	if err != nil {
		return models.Trip{}, internal(err)
	}

	s.event(ctx, "trip", "status", "trip status changed",
		zap.Int64("trip_id", id), zap.String("status", string(target)), zap.Int64("bookings_updated", cascaded))
	return s.Get(ctx, id)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
