package handlers

import (
	"net/http"
	"strings"

	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/users?q=&page=&limit=
func (h *Handler) AdminListUsers(c *gin.Context) {
	page, err := h.Admin.ListUsers(c.Request.Context(), strings.TrimSpace(c.Query("q")), pagination(c, services.DefaultPageSize, services.MaxPageSize))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PUT /api/admin/users/:id/status
func (h *Handler) AdminSetUserStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p statusPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	u, err := h.Admin.SetUserStatus(c.Request.Context(), caller(c).UserID, id, strings.ToLower(strings.TrimSpace(p.Status)))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/admin/stats
func (h *Handler) AdminStats(c *gin.Context) {
	st, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
