package models

import (
	"time"

	"fumotion/internal/domain"

	"github.com/shopspring/decimal"
)

type Trip struct {
	ID                int64             `json:"id"`
	DriverID          int64             `json:"driverId"`
	VehicleID         *int64            `json:"vehicleId,omitempty"`
	DepartureLocation string            `json:"departureLocation"`
	ArrivalLocation   string            `json:"arrivalLocation"`
	DepartureLat      *float64          `json:"departureLat,omitempty"`
	DepartureLng      *float64          `json:"departureLng,omitempty"`
	ArrivalLat        *float64          `json:"arrivalLat,omitempty"`
	ArrivalLng        *float64          `json:"arrivalLng,omitempty"`
	DepartureTime     time.Time         `json:"departureTime"`
	AvailableSeats    int               `json:"availableSeats"`
	PricePerSeat      decimal.Decimal   `json:"pricePerSeat"`
	Status            domain.TripStatus `json:"status"`
	Description       string            `json:"description"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`

	// Derived on read, never stored.
	RemainingSeats int      `json:"remainingSeats"`
	DriverName     string   `json:"driverName,omitempty"`
	Vehicle        *Vehicle `json:"vehicle,omitempty"`
}

// TripFilter drives trip search.
type TripFilter struct {
	From        string
	To          string
	Date        *time.Time
	MinSeats    int
	MaxPrice    *decimal.Decimal
	Status      domain.TripStatus
	DriverID    int64
	IncludePast bool
	Now         time.Time
	Page        domain.Pagination
}

// TripUpdate carries optional trip edits; nil fields are left unchanged.
type TripUpdate struct {
	DepartureLocation *string
	ArrivalLocation   *string
	DepartureTime     *time.Time
	AvailableSeats    *int
	PricePerSeat      *decimal.Decimal
	Description       *string
}

// Availability is the Availability Calculator output for one trip.
type Availability struct {
	TripID         int64 `json:"tripId"`
	AvailableSeats int   `json:"availableSeats"`
	BookedSeats    int   `json:"bookedSeats"`
	RemainingSeats int   `json:"remainingSeats"`
}
