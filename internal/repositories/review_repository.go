package repositories

import (
	"context"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

type ReviewRepository struct {
	DB intdb.DBTX
}

func (r ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO reviews (trip_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rv.TripID, rv.ReviewerID, rv.RevieweeID, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return err
	}
	rv.ID, err = res.LastInsertId()
	return err
}

func (r ReviewRepository) Exists(ctx context.Context, tripID, reviewerID, revieweeID int64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE trip_id = ? AND reviewer_id = ? AND reviewee_id = ?
	`, tripID, reviewerID, revieweeID).Scan(&n)
	return n > 0, err
}

// ListForUser returns reviews received by the user, newest first.
func (r ReviewRepository) ListForUser(ctx context.Context, userID int64, page domain.Pagination) ([]models.Review, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE reviewee_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT rv.id, rv.trip_id, rv.reviewer_id, rv.reviewee_id, rv.rating, rv.comment, rv.created_at, u.name
		FROM reviews rv
		JOIN users u ON u.id = rv.reviewer_id
		WHERE rv.reviewee_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT ? OFFSET ?
	`, userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.TripID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.ReviewerName); err != nil {
			return out, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}
