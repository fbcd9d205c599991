package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"fumotion/internal/domain"
	"fumotion/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", err.Error())
		return false
	}
	return true
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// pagination reads ?page=&limit= and clamps them.
func pagination(c *gin.Context, defaultSize, maxSize int) domain.Pagination {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	return domain.NewPagination(page, limit, defaultSize, maxSize)
}

// caller returns the authenticated user. Routes using it sit behind Auth.
func caller(c *gin.Context) domain.RequestContext {
	rc, _ := middleware.CurrentUser(c)
	return rc
}
