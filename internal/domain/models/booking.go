package models

import (
	"time"

	"fumotion/internal/domain"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID            int64                `json:"id"`
	TripID        int64                `json:"tripId"`
	PassengerID   int64                `json:"passengerId"`
	SeatsBooked   int                  `json:"seatsBooked"`
	TotalPrice    decimal.Decimal      `json:"totalPrice"`
	Status        domain.BookingStatus `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`

	PassengerName string       `json:"passengerName,omitempty"`
	Trip          *BookingTrip `json:"trip,omitempty"`
}

// BookingTrip is the trip summary embedded in enriched booking responses.
type BookingTrip struct {
	DepartureLocation string            `json:"departureLocation"`
	ArrivalLocation   string            `json:"arrivalLocation"`
	DepartureTime     time.Time         `json:"departureTime"`
	PricePerSeat      decimal.Decimal   `json:"pricePerSeat"`
	Status            domain.TripStatus `json:"status"`
	DriverID          int64             `json:"driverId"`
	DriverName        string            `json:"driverName"`
}

// BookingFilter drives the passenger booking list.
type BookingFilter struct {
	PassengerID int64
	Status      domain.BookingStatus
	// Type is "upcoming", "past" or empty.
	Type string
	Now  time.Time
	Page domain.Pagination
}
