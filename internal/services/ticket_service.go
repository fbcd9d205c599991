package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/utils"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// TicketService renders booking e-tickets as PDF.
type TicketService struct {
	Base
	// Loader overrides the booking lookup; used by tests.
	Loader func(ctx context.Context, bookingID int64) (models.Booking, error)
}

func (s TicketService) load(ctx context.Context, bookingID int64) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	b, err := s.bookings(s.DB).GetDetail(ctx, bookingID)
	if err != nil {
		return b, notFound("booking", err)
	}
	return b, nil
}

// Generate returns the PDF bytes and a download filename for the booking's
// passenger, the trip's driver or an admin.
func (s TicketService) Generate(ctx context.Context, bookingID int64, rc domain.RequestContext) ([]byte, string, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if b.Trip == nil {
		return nil, "", domain.InternalError{Msg: "booking has no trip"}
	}
	if !rc.IsAdmin() && b.PassengerID != rc.UserID && b.Trip.DriverID != rc.UserID {
		return nil, "", domain.ForbiddenError{Msg: "you are not part of this booking"}
	}
	if b.Status == domain.BookingCancelled {
		return nil, "", domain.InvalidOperationError{Msg: "cancelled bookings have no ticket"}
	}

	pdf, name, err := buildETicketPDF(b)
	if err != nil {
		return nil, "", internal(err)
	}
	s.event(ctx, "docs", "generate_eticket", "e-ticket rendered", zap.Int64("booking_id", bookingID))
	return pdf, name, nil
}

func buildETicketPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "FUMOTION E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger      : %s", safe(b.PassengerName, "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(b.Trip.DepartureLocation, "-"), safe(b.Trip.ArrivalLocation, "-")),
		fmt.Sprintf("Departure      : %s", utils.FormatDateTime(b.Trip.DepartureTime)),
		fmt.Sprintf("Driver         : %s", safe(b.Trip.DriverName, "-")),
		fmt.Sprintf("Seats          : %d", b.SeatsBooked),
		fmt.Sprintf("Price per seat : %s", utils.FormatMoney(b.Trip.PricePerSeat)),
		fmt.Sprintf("Total          : %s", utils.FormatMoney(b.TotalPrice)),
		fmt.Sprintf("Status         : %s / payment %s", b.Status, b.PaymentStatus),
		fmt.Sprintf("Booking code   : #%d", b.ID),
		fmt.Sprintf("Ticket code    : TCK-%d-%d", b.TripID, b.ID),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Valid for %d seat(s). Show this ticket to the driver at departure.", b.SeatsBooked), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", b.ID, safeFilenamePart(b.PassengerName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

const maxFilenameRunes = 40

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if r := []rune(s); len(r) > maxFilenameRunes {
		s = string(r[:maxFilenameRunes])
	}
	return s
}
