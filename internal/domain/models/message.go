package models

import "time"

type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	TripID     *int64    `json:"tripId,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Conversation summarizes the latest exchange with one counterpart.
type Conversation struct {
	UserID      int64   `json:"userId"`
	UserName    string  `json:"userName"`
	LastMessage Message `json:"lastMessage"`
	UnreadCount int     `json:"unreadCount"`
}
