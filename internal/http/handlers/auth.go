package handlers

import (
	"net/http"

	"fumotion/internal/domain/models"
	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
)

type registerPayload struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profilePayload struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

type passwordPayload struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var p registerPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	res, err := h.Users.Register(c.Request.Context(), services.RegisterInput{
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Password: p.Password,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var p loginPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	res, err := h.Users.Login(c.Request.Context(), p.Email, p.Password)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	u, err := h.Users.Me(c.Request.Context(), caller(c).UserID)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /api/auth/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var p profilePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), caller(c).UserID, models.UserUpdate{
		Name:  p.Name,
		Phone: p.Phone,
		Bio:   p.Bio,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /api/auth/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var p passwordPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), caller(c).UserID, p.CurrentPassword, p.NewPassword); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
