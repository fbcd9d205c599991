package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetRouter stores the active gin engine for /api/routes.
func (h *Handler) SetRouter(r *gin.Engine) {
	h.routerMu.Lock()
	defer h.routerMu.Unlock()
	h.router = r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "fumotion backend running"})
}

func (h *Handler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "internal_error", "database not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var count int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		h.logger().Error("db check failed", zap.Error(err))
		var details any
		if !h.Production {
			details = err.Error()
		}
		respondError(c, http.StatusServiceUnavailable, "internal_error", "database query failed", details)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "users_in_db": count})
}

func (h *Handler) Routes(c *gin.Context) {
	h.routerMu.RLock()
	r := h.router
	h.routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "internal_error", "router not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
