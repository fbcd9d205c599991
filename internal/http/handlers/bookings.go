package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
)

type bookPayload struct {
	SeatsBooked int `json:"seatsBooked"`
}

type paymentPayload struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// POST /api/trips/:id/book
func (h *Handler) BookTrip(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p bookPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), tripID, caller(c).UserID, p.SeatsBooked)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings?status=&type=upcoming|past&page=&limit=
func (h *Handler) MyBookings(c *gin.Context) {
	page, err := h.Bookings.ListMine(c.Request.Context(), models.BookingFilter{
		PassengerID: caller(c).UserID,
		Status:      domain.BookingStatus(strings.TrimSpace(c.Query("status"))),
		Type:        strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Page:        pagination(c, services.DefaultPageSize, services.MaxPageSize),
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.Bookings.Get(c.Request.Context(), id, caller(c))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.Bookings.CancelBooking(c.Request.Context(), id, caller(c).UserID)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:id/status
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p statusPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	target, err := domain.ParseBookingStatus(strings.TrimSpace(p.Status))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	b, err := h.Bookings.UpdateBookingStatus(c.Request.Context(), id, caller(c).UserID, target)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:id/payment
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p paymentPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	target, err := domain.ParsePaymentStatus(strings.TrimSpace(p.PaymentStatus))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	b, err := h.Bookings.UpdatePaymentStatus(c.Request.Context(), id, caller(c).UserID, target)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bookings/:id/ticket
func (h *Handler) BookingTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.Tickets.Generate(c.Request.Context(), id, caller(c))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
