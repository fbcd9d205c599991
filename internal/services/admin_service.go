package services

import (
	"context"
	"strings"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"

	"go.uber.org/zap"
)

type AdminService struct {
	Base
}

// Stats summarizes platform counts.
type Stats struct {
	Users    int            `json:"users"`
	Trips    map[string]int `json:"trips"`
	Bookings map[string]int `json:"bookings"`
}

func (s AdminService) ListUsers(ctx context.Context, q string, page domain.Pagination) (domain.Page[models.User], error) {
	items, total, err := s.users(s.DB).List(ctx, q, page)
	if err != nil {
		return domain.Page[models.User]{}, internal(err)
	}
	page.Total = total
	return domain.Page[models.User]{Items: items, Pagination: page}, nil
}

// SetUserStatus activates or suspends an account. Admins cannot suspend themselves.
func (s AdminService) SetUserStatus(ctx context.Context, adminID, userID int64, status string) (models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != domain.UserActive && status != domain.UserSuspended {
		return models.User{}, domain.ValidationError{Field: "status", Msg: "must be active or suspended"}
	}
	if adminID == userID && status == domain.UserSuspended {
		return models.User{}, domain.InvalidOperationError{Msg: "you cannot suspend your own account"}
	}
	if _, err := s.users(s.DB).GetByID(ctx, userID); err != nil {
		return models.User{}, notFound("user", err)
	}
	if err := s.users(s.DB).UpdateStatus(ctx, userID, status, s.now()); err != nil {
		return models.User{}, internal(err)
	}
	s.event(ctx, "admin", "user_status", "user status changed", zap.Int64("user_id", userID), zap.String("status", status))

	u, err := s.users(s.DB).GetByID(ctx, userID)
	if err != nil {
		return u, notFound("user", err)
	}
	return u, nil
}

func (s AdminService) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	var err error
	if out.Users, err = s.users(s.DB).Count(ctx); err != nil {
		return out, internal(err)
	}
	if out.Trips, err = s.trips(s.DB).CountByStatus(ctx); err != nil {
		return out, internal(err)
	}
	if out.Bookings, err = s.bookings(s.DB).CountByStatus(ctx); err != nil {
		return out, internal(err)
	}
	return out, nil
}
