package middleware

import (
	"net/http"
	"strings"

	"fumotion/internal/auth"
	"fumotion/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// Auth requires a valid bearer token and stores the caller on the context.
func Auth(tokens auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(raw))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// CurrentUser returns the caller set by Auth. ok is false on public routes.
func CurrentUser(c *gin.Context) (domain.RequestContext, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return domain.RequestContext{}, false
	}
	id, _ := v.(int64)
	if id <= 0 {
		return domain.RequestContext{}, false
	}
	return domain.RequestContext{UserID: id, Role: c.GetString(userRoleKey)}, true
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}
