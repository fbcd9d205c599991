package handlers

import (
	"net/http"

	"fumotion/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type reviewPayload struct {
	RevieweeID int64  `json:"revieweeId" binding:"required"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// POST /api/trips/:id/reviews
func (h *Handler) CreateReview(c *gin.Context) {
	tripID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p reviewPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	r, err := h.Reviews.Create(c.Request.Context(), tripID, caller(c).UserID, models.Review{
		RevieweeID: p.RevieweeID,
		Rating:     p.Rating,
		Comment:    p.Comment,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
