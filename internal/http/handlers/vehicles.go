package handlers

import (
	"net/http"

	"fumotion/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type vehiclePayload struct {
	Make        string `json:"make" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Color       string `json:"color"`
	PlateNumber string `json:"plateNumber" binding:"required"`
	Seats       int    `json:"seats" binding:"required"`
}

func (p vehiclePayload) toModel() models.Vehicle {
	return models.Vehicle{
		Make:        p.Make,
		Model:       p.Model,
		Color:       p.Color,
		PlateNumber: p.PlateNumber,
		Seats:       p.Seats,
	}
}

// GET /api/vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	items, err := h.Vehicles.ListMine(c.Request.Context(), caller(c).UserID)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// POST /api/vehicles
func (h *Handler) CreateVehicle(c *gin.Context) {
	var p vehiclePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	v, err := h.Vehicles.Create(c.Request.Context(), caller(c).UserID, p.toModel())
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// PUT /api/vehicles/:id
func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p vehiclePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	v, err := h.Vehicles.Update(c.Request.Context(), id, caller(c).UserID, p.toModel())
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DELETE /api/vehicles/:id
func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Vehicles.Delete(c.Request.Context(), id, caller(c).UserID); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}
