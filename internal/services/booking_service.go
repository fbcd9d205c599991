package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/metrics"
	"fumotion/internal/utils"

	"go.uber.org/zap"
)

// DefaultCancelCutoff is how long before departure a passenger may still cancel.
const DefaultCancelCutoff = 2 * time.Hour

type BookingService struct {
	Base
	CancelCutoff time.Duration
}

func (s BookingService) cutoff() time.Duration {
	if s.CancelCutoff > 0 {
		return s.CancelCutoff
	}
	return DefaultCancelCutoff
}

// RemainingSeats is the trip's declared capacity minus seats held by non-cancelled bookings.
func (s BookingService) RemainingSeats(ctx context.Context, tripID int64) (models.Availability, error) {
	av, err := s.trips(s.DB).RemainingSeats(ctx, tripID)
	if err != nil {
		return models.Availability{}, notFound("trip", err)
	}
	return av, nil
}

// CreateBooking admits a booking of seats on tripID for passengerID. All checks
// and the insert run in one transaction with the trip row locked, so concurrent
// admissions on the same trip cannot oversell it.
func (s BookingService) CreateBooking(ctx context.Context, tripID, passengerID int64, seats int) (models.Booking, error) {
	if seats < 1 {
		metrics.TrackAdmission("invalid", 0)
		return models.Booking{}, domain.ValidationError{Field: "seatsBooked", Msg: "must be at least 1"}
	}

	start := time.Now()
	var booking models.Booking
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		trips := s.trips(tx)
		bookings := s.bookings(tx)

		trip, err := trips.GetByID(ctx, tripID, true)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && trip.Status != domain.TripActive) {
			return domain.NotFoundError{Resource: "trip"}
		}
		if err != nil {
			return err
		}
		if trip.DriverID == passengerID {
			return domain.InvalidOperationError{Msg: "drivers cannot book their own trip"}
		}

		exists, err := bookings.ExistsForTripPassenger(ctx, tripID, passengerID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ConflictError{Resource: "booking", Msg: "you already have a booking for this trip"}
		}

		booked, err := trips.BookedSeats(ctx, tripID)
		if err != nil {
			return err
		}
		remaining := trip.AvailableSeats - booked
		if seats > remaining {
			return domain.CapacityExceededError{Requested: seats, Remaining: max(remaining, 0)}
		}

		now := s.now()
		booking = models.Booking{
			TripID:        tripID,
			PassengerID:   passengerID,
			SeatsBooked:   seats,
			TotalPrice:    utils.LineTotal(trip.PricePerSeat, seats),
			Status:        domain.BookingConfirmed,
			PaymentStatus: domain.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := bookings.Create(ctx, &booking); err != nil {
			if intdb.IsUniqueViolation(err) {
				return domain.ConflictError{Resource: "booking", Msg: "you already have a booking for this trip", Err: err}
			}
			return err
		}
		return nil
	})
	metrics.TrackAdmission(admissionOutcome(err), time.Since(start))
	if err != nil {
		return models.Booking{}, internal(err)
	}

	s.event(ctx, "booking", "create", "booking admitted",
		zap.Int64("booking_id", booking.ID), zap.Int64("trip_id", tripID), zap.Int("seats", seats))

	detail, err := s.bookings(s.DB).GetDetail(ctx, booking.ID)
	if err != nil {
		return booking, internal(err)
	}
	return detail, nil
}

func admissionOutcome(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsInvalidOperation(err):
		return "self_booking"
	case domain.IsConflict(err):
		return "duplicate"
	case domain.IsCapacityExceeded(err):
		return "capacity_exceeded"
	default:
		return "error"
	}
}

// CancelBooking lets a passenger cancel their own booking up to the cutoff before departure.
// A paid booking is refunded.
func (s BookingService) CancelBooking(ctx context.Context, bookingID, requesterID int64) (models.Booking, error) {
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		b, trip, err := s.lockBookingAndTrip(ctx, tx, bookingID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && b.PassengerID != requesterID) {
			return domain.NotFoundError{Resource: "booking"}
		}
		if err != nil {
			return err
		}
		if b.Status.IsTerminal() {
			return domain.InvalidOperationError{Msg: "booking is already " + string(b.Status)}
		}
		if !b.Status.CanTransitionTo(domain.BookingCancelled) {
			return domain.InvalidOperationError{Msg: "a " + string(b.Status) + " booking cannot be cancelled"}
		}

		now := s.now()
		if now.After(trip.DepartureTime.Add(-s.cutoff())) {
			return domain.InvalidOperationError{Msg: "bookings cannot be cancelled within " + s.cutoff().String() + " of departure"}
		}

		return s.cancelLocked(ctx, tx, b, now)
	})
	if err != nil {
		return models.Booking{}, internal(err)
	}

	s.event(ctx, "booking", "cancel", "booking cancelled by passenger", zap.Int64("booking_id", bookingID))
	return s.detail(ctx, bookingID)
}

func (s BookingService) cancelLocked(ctx context.Context, tx *sql.Tx, b models.Booking, now time.Time) error {
	repo := s.bookings(tx)
	if err := repo.UpdateStatus(ctx, b.ID, domain.BookingCancelled, now); err != nil {
		return err
	}
	if b.PaymentStatus == domain.PaymentPaid {
		if err := repo.UpdatePaymentStatus(ctx, b.ID, domain.PaymentRefunded, now); err != nil {
			return err
		}
	}
	metrics.TrackBookingTransition(string(domain.BookingCancelled))
	return nil
}

// UpdateBookingStatus lets the trip's driver confirm or cancel a booking.
func (s BookingService) UpdateBookingStatus(ctx context.Context, bookingID, driverID int64, target domain.BookingStatus) (models.Booking, error) {
	if target != domain.BookingConfirmed && target != domain.BookingCancelled {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "must be confirmed or cancelled"}
	}

	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		b, trip, err := s.loadForDriver(ctx, tx, bookingID, driverID)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(target) {
			return domain.InvalidOperationError{Msg: "cannot change booking from " + string(b.Status) + " to " + string(target)}
		}

		now := s.now()
		if target == domain.BookingCancelled {
			return s.cancelLocked(ctx, tx, b, now)
		}

		held, err := s.trips(tx).BookedSeats(ctx, trip.ID)
		if err != nil {
			return err
		}
		others := held
		if b.Status.HoldsSeats() {
			others -= b.SeatsBooked
		}
		if others+b.SeatsBooked > trip.AvailableSeats {
			return domain.CapacityExceededError{Requested: b.SeatsBooked, Remaining: max(trip.AvailableSeats-others, 0)}
		}
		if err := s.bookings(tx).UpdateStatus(ctx, b.ID, target, now); err != nil {
			return err
		}
		metrics.TrackBookingTransition(string(target))
		return nil
	})
	if err != nil {
		return models.Booking{}, internal(err)
	}

	s.event(ctx, "booking", "status", "booking status changed by driver",
		zap.Int64("booking_id", bookingID), zap.String("status", string(target)))
	return s.detail(ctx, bookingID)
}

// UpdatePaymentStatus lets the trip's driver record payment or a refund.
func (s BookingService) UpdatePaymentStatus(ctx context.Context, bookingID, driverID int64, target domain.PaymentStatus) (models.Booking, error) {
	if !target.IsValid() {
		return models.Booking{}, domain.ValidationError{Field: "paymentStatus", Msg: "unknown payment status"}
	}

	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		b, _, err := s.loadForDriver(ctx, tx, bookingID, driverID)
		if err != nil {
			return err
		}
		if !b.PaymentStatus.CanTransitionTo(target) {
			return domain.InvalidOperationError{Msg: "cannot change payment from " + string(b.PaymentStatus) + " to " + string(target)}
		}
		if target == domain.PaymentPaid && b.Status == domain.BookingCancelled {
			return domain.InvalidOperationError{Msg: "a cancelled booking cannot be marked paid"}
		}
		return s.bookings(tx).UpdatePaymentStatus(ctx, b.ID, target, s.now())
	})
	if err != nil {
		return models.Booking{}, internal(err)
	}

	s.event(ctx, "booking", "payment", "payment status changed",
		zap.Int64("booking_id", bookingID), zap.String("payment_status", string(target)))
	return s.detail(ctx, bookingID)
}

func (s BookingService) loadForDriver(ctx context.Context, tx *sql.Tx, bookingID, driverID int64) (models.Booking, models.Trip, error) {
	b, trip, err := s.lockBookingAndTrip(ctx, tx, bookingID)
	if err != nil {
		return b, trip, notFound("booking", err)
	}
	if trip.DriverID != driverID {
		return b, trip, domain.ForbiddenError{Msg: "only the trip's driver can manage this booking"}
	}
	return b, trip, nil
}

// lockBookingAndTrip locks the trip row before the booking row, the same order
// admission and trip status changes use, so the paths cannot deadlock.
// The booking is read unlocked first only to learn its trip.
func (s BookingService) lockBookingAndTrip(ctx context.Context, tx *sql.Tx, bookingID int64) (models.Booking, models.Trip, error) {
	bookings := s.bookings(tx)
	b, err := bookings.GetByID(ctx, bookingID, false)
	if err != nil {
		return b, models.Trip{}, err
	}
	trip, err := s.trips(tx).GetByID(ctx, b.TripID, true)
	if err != nil {
		return b, trip, err
	}
	b, err = bookings.GetByID(ctx, bookingID, true)
	return b, trip, err
}

// Get returns a booking visible to its passenger, the trip's driver, or an admin.
func (s BookingService) Get(ctx context.Context, bookingID int64, rc domain.RequestContext) (models.Booking, error) {
	b, err := s.detail(ctx, bookingID)
	if err != nil {
		return b, err
	}
	if rc.IsAdmin() || b.PassengerID == rc.UserID || (b.Trip != nil && b.Trip.DriverID == rc.UserID) {
		return b, nil
	}
	return models.Booking{}, domain.ForbiddenError{Msg: "you are not part of this booking"}
}

func (s BookingService) detail(ctx context.Context, bookingID int64) (models.Booking, error) {
	b, err := s.bookings(s.DB).GetDetail(ctx, bookingID)
	if err != nil {
		return b, notFound("booking", err)
	}
	return b, nil
}

// ListMine returns the passenger's bookings, filtered by status and upcoming/past.
func (s BookingService) ListMine(ctx context.Context, f models.BookingFilter) (domain.Page[models.Booking], error) {
	switch f.Type {
	case "", "upcoming", "past":
	default:
		return domain.Page[models.Booking]{}, domain.ValidationError{Field: "type", Msg: "must be upcoming or past"}
	}
	if f.Status != "" && !f.Status.IsValid() {
		return domain.Page[models.Booking]{}, domain.ValidationError{Field: "status", Msg: "unknown booking status"}
	}
	f.Now = s.now()

	items, total, err := s.bookings(s.DB).ListByPassenger(ctx, f)
	if err != nil {
		return domain.Page[models.Booking]{}, internal(err)
	}
	f.Page.Total = total
	return domain.Page[models.Booking]{Items: items, Pagination: f.Page}, nil
}

// ListForTrip returns all bookings on a trip to its driver or an admin.
func (s BookingService) ListForTrip(ctx context.Context, tripID int64, rc domain.RequestContext) ([]models.Booking, error) {
	trip, err := s.trips(s.DB).GetByID(ctx, tripID, false)
	if err != nil {
		return nil, notFound("trip", err)
	}
	if trip.DriverID != rc.UserID && !rc.IsAdmin() {
		return nil, domain.ForbiddenError{Msg: "only the trip's driver can list its bookings"}
	}
	out, err := s.bookings(s.DB).ListByTrip(ctx, tripID)
	return out, internal(err)
}
