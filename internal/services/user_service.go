package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"fumotion/internal/auth"
	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
	"fumotion/internal/utils"

	"go.uber.org/zap"
)

const minPasswordLen = 6

type UserService struct {
	Base
	Tokens auth.Issuer
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (s UserService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	name := utils.NormalizeSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return AuthResult{}, domain.ValidationError{Field: "name", Msg: "required"}
	case !validEmail(email):
		return AuthResult{}, domain.ValidationError{Field: "email", Msg: "invalid email address"}
	case len(in.Password) < minPasswordLen:
		return AuthResult{}, domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}

	exists, err := s.users(s.DB).EmailExists(ctx, email)
	if err != nil {
		return AuthResult{}, internal(err)
	}
	if exists {
		return AuthResult{}, domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, internal(err)
	}
	now := s.now()
	u := models.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users(s.DB).Create(ctx, &u); err != nil {
		if intdb.IsUniqueViolation(err) {
			return AuthResult{}, domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		}
		return AuthResult{}, internal(err)
	}
	s.event(ctx, "auth", "register", "user registered", zap.Int64("user_id", u.ID))
	return s.issue(u)
}

func (s UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users(s.DB).GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if isNoRows(err) {
			return AuthResult{}, domain.UnauthorizedError{Msg: "invalid email or password"}
		}
		return AuthResult{}, internal(err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return AuthResult{}, domain.UnauthorizedError{Msg: "invalid email or password"}
	}
	if u.Status != domain.UserActive {
		return AuthResult{}, domain.ForbiddenError{Msg: "account is suspended"}
	}
	s.event(ctx, "auth", "login", "user logged in", zap.Int64("user_id", u.ID))
	return s.issue(u)
}

func (s UserService) issue(u models.User) (AuthResult, error) {
	token, exp, err := s.Tokens.Generate(u.ID, u.Role)
	if err != nil {
		return AuthResult{}, internal(err)
	}
	return AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s UserService) Me(ctx context.Context, userID int64) (models.User, error) {
	u, err := s.users(s.DB).GetByID(ctx, userID)
	if err != nil {
		return u, notFound("user", err)
	}
	return u, nil
}

func (s UserService) UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (models.User, error) {
	if upd.Name != nil {
		n := utils.NormalizeSpace(*upd.Name)
		if n == "" {
			return models.User{}, domain.ValidationError{Field: "name", Msg: "required"}
		}
		upd.Name = &n
	}
	if upd.Phone != nil {
		p := strings.TrimSpace(*upd.Phone)
		upd.Phone = &p
	}
	if err := s.users(s.DB).Update(ctx, userID, upd, s.now()); err != nil {
		return models.User{}, internal(err)
	}
	return s.Me(ctx, userID)
}

func (s UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return domain.ValidationError{Field: "currentPassword", Msg: "is incorrect"}
	}
	if len(next) < minPasswordLen {
		return domain.ValidationError{Field: "newPassword", Msg: "must be at least 6 characters"}
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return internal(err)
	}
	if err := s.users(s.DB).UpdatePassword(ctx, userID, hash, s.now()); err != nil {
		return internal(err)
	}
	s.event(ctx, "auth", "password", "password changed", zap.Int64("user_id", userID))
	return nil
}

// Public returns the profile other users see, with rating summary.
func (s UserService) Public(ctx context.Context, userID int64) (models.PublicUser, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	out := u.ToPublic()
	avg, count, err := s.users(s.DB).RatingSummary(ctx, userID)
	if err != nil {
		return out, internal(err)
	}
	out.AverageRating, out.ReviewCount = avg, count
	return out, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
