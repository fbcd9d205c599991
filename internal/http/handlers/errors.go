package handlers

import (
	"errors"
	"net/http"

	"fumotion/internal/domain"
	"fumotion/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the error payload of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Details:   details,
	})
}

// RespondDomainError maps domain errors to HTTP responses and logs them once.
func (h *Handler) RespondDomainError(c *gin.Context, err error) {
	var capacity domain.CapacityExceededError
	switch {
	case errors.As(err, &capacity):
		h.logRejected(c, "capacity_exceeded", err)
		respondError(c, http.StatusBadRequest, "capacity_exceeded", err.Error(), gin.H{
			"requested": capacity.Requested,
			"remaining": capacity.Remaining,
		})
	case domain.IsValidation(err):
		h.logRejected(c, "validation_error", err)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsInvalidOperation(err):
		h.logRejected(c, "invalid_operation", err)
		respondError(c, http.StatusBadRequest, "invalid_operation", err.Error(), nil)
	case domain.IsConflict(err):
		h.logRejected(c, "conflict", err)
		respondError(c, http.StatusBadRequest, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		h.logRejected(c, "unauthorized", err)
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsForbidden(err):
		h.logRejected(c, "forbidden", err)
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case domain.IsNotFound(err):
		h.logRejected(c, "not_found", err)
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		h.logger().Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		var details any
		if !h.Production {
			details = causeOf(err)
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", details)
	}
}

func (h *Handler) logRejected(c *gin.Context, code string, err error) {
	h.logger().Info("request rejected",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.FullPath()),
		zap.String("code", code),
		zap.String("reason", err.Error()),
	)
}

func causeOf(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}
