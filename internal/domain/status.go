package domain

import "fmt"

type TripStatus string

const (
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

var tripTransitions = map[TripStatus][]TripStatus{
	TripActive:    {TripCompleted, TripCancelled},
	TripCompleted: {},
	TripCancelled: {},
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingCompleted},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
	BookingCancelled: {},
	BookingCompleted: {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentRefunded},
	PaymentPaid:     {PaymentRefunded},
	PaymentRefunded: {},
}

func canTransition[S comparable](table map[S][]S, from, to S) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s TripStatus) IsValid() bool {
	_, ok := tripTransitions[s]
	return ok
}

func (s TripStatus) CanTransitionTo(target TripStatus) bool {
	return canTransition(tripTransitions, s, target)
}

func (s TripStatus) IsTerminal() bool {
	return s.IsValid() && len(tripTransitions[s]) == 0
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return canTransition(bookingTransitions, s, target)
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(bookingTransitions[s]) == 0
}

// HoldsSeats reports whether the booking counts against trip capacity.
func (s BookingStatus) HoldsSeats() bool {
	return s != BookingCancelled
}

func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return canTransition(paymentTransitions, s, target)
}

func ParseTripStatus(s string) (TripStatus, error) {
	st := TripStatus(s)
	if !st.IsValid() {
		return "", ValidationError{Field: "status", Msg: fmt.Sprintf("unknown trip status %q", s)}
	}
	return st, nil
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	if !st.IsValid() {
		return "", ValidationError{Field: "status", Msg: fmt.Sprintf("unknown booking status %q", s)}
	}
	return st, nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(s)
	if !st.IsValid() {
		return "", ValidationError{Field: "paymentStatus", Msg: fmt.Sprintf("unknown payment status %q", s)}
	}
	return st, nil
}
