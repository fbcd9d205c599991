package handlers

import (
	"net/http"

	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.Users.Public(c.Request.Context(), id)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/users/:id/reviews?page=1&limit=20
func (h *Handler) ListUserReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.Reviews.ListForUser(c.Request.Context(), id, pagination(c, services.DefaultPageSize, services.MaxPageSize))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
