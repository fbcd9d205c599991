package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

const maxMessageLen = 2000

type MessageService struct {
	Base
}

func (s MessageService) Send(ctx context.Context, senderID int64, in models.Message) (models.Message, error) {
	content := strings.TrimSpace(in.Content)
	switch {
	case content == "":
		return models.Message{}, domain.ValidationError{Field: "content", Msg: "required"}
	case utf8.RuneCountInString(content) > maxMessageLen:
		return models.Message{}, domain.ValidationError{Field: "content", Msg: "must be at most 2000 characters"}
	case in.ReceiverID == senderID:
		return models.Message{}, domain.InvalidOperationError{Msg: "you cannot message yourself"}
	}

	if _, err := s.users(s.DB).GetByID(ctx, in.ReceiverID); err != nil {
		return models.Message{}, notFound("receiver", err)
	}
	if in.TripID != nil {
		if _, err := s.trips(s.DB).GetByID(ctx, *in.TripID, false); err != nil {
			return models.Message{}, notFound("trip", err)
		}
	}

	m := models.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		TripID:     in.TripID,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.messages(s.DB).Create(ctx, &m); err != nil {
		return models.Message{}, internal(err)
	}
	return m, nil
}

func (s MessageService) Conversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	out, err := s.messages(s.DB).Conversations(ctx, userID)
	return out, internal(err)
}

// Thread returns the messages between userID and otherID, oldest first.
func (s MessageService) Thread(ctx context.Context, userID, otherID int64, page domain.Pagination) (domain.Page[models.Message], error) {
	if _, err := s.users(s.DB).GetByID(ctx, otherID); err != nil {
		return domain.Page[models.Message]{}, notFound("user", err)
	}
	items, total, err := s.messages(s.DB).Thread(ctx, userID, otherID, page)
	if err != nil {
		return domain.Page[models.Message]{}, internal(err)
	}
	page.Total = total
	return domain.Page[models.Message]{Items: items, Pagination: page}, nil
}

// MarkRead marks everything otherID sent to userID as read.
func (s MessageService) MarkRead(ctx context.Context, userID, otherID int64) (int64, error) {
	n, err := s.messages(s.DB).MarkRead(ctx, userID, otherID)
	return n, internal(err)
}

func (s MessageService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	n, err := s.messages(s.DB).UnreadCount(ctx, userID)
	return n, internal(err)
}
