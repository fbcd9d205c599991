package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/services"
	"fumotion/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type tripPayload struct {
	VehicleID         *int64          `json:"vehicleId"`
	DepartureLocation string          `json:"departureLocation" binding:"required"`
	ArrivalLocation   string          `json:"arrivalLocation" binding:"required"`
	DepartureLat      *float64        `json:"departureLat"`
	DepartureLng      *float64        `json:"departureLng"`
	ArrivalLat        *float64        `json:"arrivalLat"`
	ArrivalLng        *float64        `json:"arrivalLng"`
	DepartureTime     string          `json:"departureTime" binding:"required"`
	AvailableSeats    int             `json:"availableSeats"`
	PricePerSeat      decimal.Decimal `json:"pricePerSeat"`
	Description       string          `json:"description"`
}

type tripUpdatePayload struct {
	DepartureLocation *string          `json:"departureLocation"`
	ArrivalLocation   *string          `json:"arrivalLocation"`
	DepartureTime     *string          `json:"departureTime"`
	AvailableSeats    *int             `json:"availableSeats"`
	PricePerSeat      *decimal.Decimal `json:"pricePerSeat"`
	Description       *string          `json:"description"`
}

type statusPayload struct {
	Status string `json:"status" binding:"required"`
}

func departureTime(raw string) (time.Time, error) {
	t, err := utils.ParseTimestamp(raw)
	if err != nil {
		return t, domain.ValidationError{Field: "departureTime", Msg: "use RFC 3339 or YYYY-MM-DD HH:MM", Err: err}
	}
	return t, nil
}

// POST /api/trips
func (h *Handler) CreateTrip(c *gin.Context) {
	var p tripPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	dep, err := departureTime(p.DepartureTime)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	trip, err := h.Trips.Create(c.Request.Context(), caller(c).UserID, models.Trip{
		VehicleID:         p.VehicleID,
		DepartureLocation: p.DepartureLocation,
		ArrivalLocation:   p.ArrivalLocation,
		DepartureLat:      p.DepartureLat,
		DepartureLng:      p.DepartureLng,
		ArrivalLat:        p.ArrivalLat,
		ArrivalLng:        p.ArrivalLng,
		DepartureTime:     dep,
		AvailableSeats:    p.AvailableSeats,
		PricePerSeat:      p.PricePerSeat,
		Description:       p.Description,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// GET /api/trips?from=&to=&date=YYYY-MM-DD&seats=&max_price=&status=&include_past=&page=&limit=
func (h *Handler) SearchTrips(c *gin.Context) {
	f, err := tripFilterFromQuery(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	page, err := h.Trips.Search(c.Request.Context(), f)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func tripFilterFromQuery(c *gin.Context) (models.TripFilter, error) {
	f := models.TripFilter{
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
		Status: domain.TripStatus(strings.TrimSpace(c.Query("status"))),
		Page:   pagination(c, services.DefaultPageSize, services.MaxPageSize),
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			return f, domain.ValidationError{Field: "date", Msg: "use YYYY-MM-DD", Err: err}
		}
		f.Date = &d
	}
	if raw := strings.TrimSpace(c.Query("seats")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, domain.ValidationError{Field: "seats", Msg: "must be a number", Err: err}
		}
		f.MinSeats = n
	}
	if raw := strings.TrimSpace(c.Query("max_price")); raw != "" {
		p, err := utils.ParsePrice(raw)
		if err != nil {
			return f, domain.ValidationError{Field: "max_price", Msg: "must be a non-negative number", Err: err}
		}
		f.MaxPrice = &p
	}
	if raw := strings.TrimSpace(c.Query("include_past")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, domain.ValidationError{Field: "include_past", Msg: "must be true or false", Err: err}
		}
		f.IncludePast = b
	}
	return f, nil
}

// GET /api/trips/mine?status=&page=&limit=
func (h *Handler) MyTrips(c *gin.Context) {
	status := domain.TripStatus(strings.TrimSpace(c.Query("status")))
	page, err := h.Trips.ListByDriver(c.Request.Context(), caller(c).UserID, status, pagination(c, services.DefaultPageSize, services.MaxPageSize))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/trips/:id
func (h *Handler) GetTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	trip, err := h.Trips.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GET /api/trips/:id/availability
func (h *Handler) TripAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	av, err := h.Bookings.RemainingSeats(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, av)
}

// PUT /api/trips/:id
func (h *Handler) UpdateTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p tripUpdatePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	upd := models.TripUpdate{
		DepartureLocation: p.DepartureLocation,
		ArrivalLocation:   p.ArrivalLocation,
		AvailableSeats:    p.AvailableSeats,
		PricePerSeat:      p.PricePerSeat,
		Description:       p.Description,
	}
	if p.DepartureTime != nil {
		dep, err := departureTime(*p.DepartureTime)
		if err != nil {
			h.RespondDomainError(c, err)
			return
		}
		upd.DepartureTime = &dep
	}
	trip, err := h.Trips.Update(c.Request.Context(), id, caller(c).UserID, upd)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// PUT /api/trips/:id/status
func (h *Handler) UpdateTripStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p statusPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	target, err := domain.ParseTripStatus(strings.TrimSpace(p.Status))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	trip, err := h.Trips.UpdateStatus(c.Request.Context(), id, caller(c), target)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GET /api/trips/:id/bookings
func (h *Handler) TripBookings(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.Bookings.ListForTrip(c.Request.Context(), id, caller(c))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
