package handlers

import (
	"net/http"

	"fumotion/internal/domain/models"
	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
)

type messagePayload struct {
	ReceiverID int64  `json:"receiverId" binding:"required"`
	TripID     *int64 `json:"tripId"`
	Content    string `json:"content"`
}

// threadPageSize is larger than list pages since threads are read in bulk.
const threadPageSize = 50

// POST /api/messages
func (h *Handler) SendMessage(c *gin.Context) {
	var p messagePayload
	if !BindJSONOrError(c, &p) {
		return
	}
	m, err := h.Messages.Send(c.Request.Context(), caller(c).UserID, models.Message{
		ReceiverID: p.ReceiverID,
		TripID:     p.TripID,
		Content:    p.Content,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GET /api/messages/conversations
func (h *Handler) Conversations(c *gin.Context) {
	items, err := h.Messages.Conversations(c.Request.Context(), caller(c).UserID)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/messages/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.Messages.UnreadCount(c.Request.Context(), caller(c).UserID)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": n})
}

// GET /api/messages/:userId?page=&limit=
func (h *Handler) Thread(c *gin.Context) {
	otherID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	page, err := h.Messages.Thread(c.Request.Context(), caller(c).UserID, otherID, pagination(c, threadPageSize, services.MaxPageSize))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PUT /api/messages/:userId/read
func (h *Handler) MarkThreadRead(c *gin.Context) {
	otherID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	n, err := h.Messages.MarkRead(c.Request.Context(), caller(c).UserID, otherID)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}
