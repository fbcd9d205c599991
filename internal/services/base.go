package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/repositories"
	"fumotion/internal/utils"

	"go.uber.org/zap"
)

// Base holds what every service needs: the storage handle, its dialect, a logger and a clock.
type Base struct {
	DB      *sql.DB
	Dialect intdb.Dialect
	Log     *zap.Logger
	Now     func() time.Time
}

func (b Base) now() time.Time {
	if b.Now != nil {
		return b.Now().UTC().Truncate(time.Second)
	}
	return utils.NowUTC()
}

func (b Base) logger() *zap.Logger {
	if b.Log != nil {
		return b.Log
	}
	return zap.NewNop()
}

func (b Base) event(ctx context.Context, module, action, msg string, fields ...zap.Field) {
	utils.LogEvent(b.logger(), utils.RequestIDFrom(ctx), module, action, msg, fields...)
}

func (b Base) users(q intdb.DBTX) repositories.UserRepository {
	return repositories.UserRepository{DB: q}
}

func (b Base) vehicles(q intdb.DBTX) repositories.VehicleRepository {
	return repositories.VehicleRepository{DB: q}
}

func (b Base) trips(q intdb.DBTX) repositories.TripRepository {
	return repositories.TripRepository{DB: q, Dialect: b.Dialect}
}

func (b Base) bookings(q intdb.DBTX) repositories.BookingRepository {
	return repositories.BookingRepository{DB: q, Dialect: b.Dialect}
}

func (b Base) reviews(q intdb.DBTX) repositories.ReviewRepository {
	return repositories.ReviewRepository{DB: q}
}

func (b Base) messages(q intdb.DBTX) repositories.MessageRepository {
	return repositories.MessageRepository{DB: q}
}

// notFound maps sql.ErrNoRows to NotFoundError and anything else to InternalError.
func notFound(resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return internal(err)
}

// internal wraps storage failures, passing domain errors through untouched.
func internal(err error) error {
	if err == nil || isDomain(err) {
		return err
	}
	return domain.InternalError{Err: err}
}

func isDomain(err error) bool {
	return domain.IsNotFound(err) || domain.IsValidation(err) || domain.IsConflict(err) ||
		domain.IsInternal(err) || domain.IsInvalidOperation(err) || domain.IsCapacityExceeded(err) ||
		domain.IsForbidden(err) || domain.IsUnauthorized(err)
}
