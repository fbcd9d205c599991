package handlers

import (
	"database/sql"
	"sync"
	"time"

	"fumotion/internal/auth"
	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Users    services.UserService
	Vehicles services.VehicleService
	Trips    services.TripService
	Bookings services.BookingService
	Reviews  services.ReviewService
	Messages services.MessageService
	Tickets  services.TicketService
	Admin    services.AdminService

	DB  *sql.DB
	Log *zap.Logger
	// Production hides internal error details from responses.
	Production bool

	routerMu sync.RWMutex
	router   *gin.Engine
}

// New builds every service on top of one shared Base.
func New(base services.Base, tokens auth.Issuer, cancelCutoff time.Duration, production bool) *Handler {
	return &Handler{
		Users:      services.UserService{Base: base, Tokens: tokens},
		Vehicles:   services.VehicleService{Base: base},
		Trips:      services.TripService{Base: base},
		Bookings:   services.BookingService{Base: base, CancelCutoff: cancelCutoff},
		Reviews:    services.ReviewService{Base: base},
		Messages:   services.MessageService{Base: base},
		Tickets:    services.TicketService{Base: base},
		Admin:      services.AdminService{Base: base},
		DB:         base.DB,
		Log:        base.Log,
		Production: production,
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
