package repositories

import (
	"context"
	"database/sql"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

type MessageRepository struct {
	DB intdb.DBTX
}

const messageColumns = `m.id, m.sender_id, m.receiver_id, m.trip_id, m.content, m.is_read, m.created_at`

func scanMessage(rs rowScanner, extra ...any) (models.Message, error) {
	var m models.Message
	var tripID sql.NullInt64
	dest := []any{&m.ID, &m.SenderID, &m.ReceiverID, &tripID, &m.Content, &m.IsRead, &m.CreatedAt}
	if err := rs.Scan(append(dest, extra...)...); err != nil {
		return models.Message{}, err
	}
	m.TripID = intdb.Int64Ptr(tripID)
	return m, nil
}

func (r MessageRepository) Create(ctx context.Context, m *models.Message) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, trip_id, content, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, m.SenderID, m.ReceiverID, intdb.NullInt64(m.TripID), m.Content, m.CreatedAt)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// Thread returns messages exchanged between a and b, oldest first.
func (r MessageRepository) Thread(ctx context.Context, a, b int64, page domain.Pagination) ([]models.Message, int, error) {
	const where = ` WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)`
	args := []any{a, b, b, a}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages m`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.PageSize, page.Offset())
	rows, err := r.DB.QueryContext(ctx, `SELECT `+messageColumns+` FROM messages m`+where+`
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return out, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// Conversations lists the latest message per counterpart of userID with unread counts, most recent first.
func (r MessageRepository) Conversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+messageColumns+`, u.id, u.name,
			(SELECT COUNT(*) FROM messages x
			 WHERE x.sender_id = u.id AND x.receiver_id = ? AND x.is_read = 0)
		FROM messages m
		JOIN users u ON u.id = CASE WHEN m.sender_id = ? THEN m.receiver_id ELSE m.sender_id END
		WHERE m.id IN (
			SELECT MAX(id) FROM messages
			WHERE sender_id = ? OR receiver_id = ?
			GROUP BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
		)
		ORDER BY m.id DESC
	`, userID, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		m, err := scanMessage(rows, &c.UserID, &c.UserName, &c.UnreadCount)
		if err != nil {
			return out, err
		}
		c.LastMessage = m
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkRead flags every message from sender to receiver as read.
func (r MessageRepository) MarkRead(ctx context.Context, receiverID, senderID int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET is_read = 1 WHERE receiver_id = ? AND sender_id = ? AND is_read = 0
	`, receiverID, senderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r MessageRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0`, userID).Scan(&n)
	return n, err
}
