package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"

	"github.com/shopspring/decimal"
)

func TestTicketServiceGenerate(t *testing.T) {
	loader := func(_ context.Context, id int64) (models.Booking, error) {
		return models.Booking{
			ID:            id,
			TripID:        3,
			PassengerID:   7,
			SeatsBooked:   2,
			TotalPrice:    decimal.RequireFromString("25.00"),
			Status:        domain.BookingConfirmed,
			PaymentStatus: domain.PaymentPaid,
			PassengerName: "Tester Name",
			Trip: &models.BookingTrip{
				DepartureLocation: "CityA",
				ArrivalLocation:   "CityB",
				DepartureTime:     time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC),
				PricePerSeat:      decimal.RequireFromString("12.50"),
				DriverID:          9,
				DriverName:        "Driver",
			},
		}, nil
	}
	svc := TicketService{Loader: loader}

	pdf, filename, err := svc.Generate(context.Background(), 10, domain.RequestContext{UserID: 7})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "ETICKET_10_Tester_Name.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}

	if _, _, err := svc.Generate(context.Background(), 10, domain.RequestContext{UserID: 9}); err != nil {
		t.Fatalf("driver should get the ticket: %v", err)
	}
	if _, _, err := svc.Generate(context.Background(), 10, domain.RequestContext{UserID: 8}); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
}

func TestTicketServiceRejectsCancelled(t *testing.T) {
	f := newFixture(t)
	driver, p := f.user("Driver"), f.user("P")
	trip := f.trip(driver.ID, 2, 48*time.Hour)
	b, err := f.bookingService().CreateBooking(f.ctx, trip.ID, p.ID, 1)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	svc := TicketService{Base: f.base}
	if _, _, err := svc.Generate(f.ctx, b.ID, domain.RequestContext{UserID: p.ID}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := f.bookingService().CancelBooking(f.ctx, b.ID, p.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, _, err := svc.Generate(f.ctx, b.ID, domain.RequestContext{UserID: p.ID}); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
	if _, _, err := svc.Generate(f.ctx, 999, domain.RequestContext{UserID: p.ID}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSafeFilenamePartKeepsRunesWhole(t *testing.T) {
	got := safeFilenamePart("a" + strings.Repeat("É", 50))
	if !utf8.ValidString(got) {
		t.Fatalf("filename part is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 40 {
		t.Fatalf("expected 40 runes, got %d", n)
	}
	if got := safeFilenamePart(" Tester Name "); got != "Tester_Name" {
		t.Fatalf("unexpected %q", got)
	}
	if got := safeFilenamePart("  "); got != "NA" {
		t.Fatalf("unexpected %q", got)
	}
}
