package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireRoles only lets through callers whose role is in allowedRoles.
// It must run after Auth, which sets the role on the context.
//
//	admin.Use(RequireRoles("admin"))
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "no role on request context")
			return
		}

		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			abort(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}

		c.Next()
	}
}
