package services

import (
	"context"
	"strings"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"

	"go.uber.org/zap"
)

const maxReviewComment = 1000

type ReviewService struct {
	Base
}

// Create records a review between the driver and a passenger of a completed trip.
func (s ReviewService) Create(ctx context.Context, tripID, reviewerID int64, in models.Review) (models.Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	switch {
	case in.Rating < 1 || in.Rating > 5:
		return models.Review{}, domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	case len(in.Comment) > maxReviewComment:
		return models.Review{}, domain.ValidationError{Field: "comment", Msg: "too long"}
	case in.RevieweeID == reviewerID:
		return models.Review{}, domain.InvalidOperationError{Msg: "you cannot review yourself"}
	}

	trip, err := s.trips(s.DB).GetByID(ctx, tripID, false)
	if err != nil {
		return models.Review{}, notFound("trip", err)
	}
	if trip.Status != domain.TripCompleted {
		return models.Review{}, domain.InvalidOperationError{Msg: "reviews open once the trip is completed"}
	}

	bookings := s.bookings(s.DB)
	switch {
	case reviewerID == trip.DriverID:
		ok, err := bookings.HasParticipation(ctx, tripID, in.RevieweeID)
		if err != nil {
			return models.Review{}, internal(err)
		}
		if !ok {
			return models.Review{}, domain.ValidationError{Field: "revieweeId", Msg: "was not a passenger on this trip"}
		}
	case in.RevieweeID == trip.DriverID:
		ok, err := bookings.HasParticipation(ctx, tripID, reviewerID)
		if err != nil {
			return models.Review{}, internal(err)
		}
		if !ok {
			return models.Review{}, domain.ForbiddenError{Msg: "only passengers of this trip can review its driver"}
		}
	default:
		return models.Review{}, domain.ForbiddenError{Msg: "reviews are between the driver and a passenger"}
	}

	exists, err := s.reviews(s.DB).Exists(ctx, tripID, reviewerID, in.RevieweeID)
	if err != nil {
		return models.Review{}, internal(err)
	}
	if exists {
		return models.Review{}, domain.ConflictError{Resource: "review", Msg: "already reviewed for this trip"}
	}

	rv := models.Review{
		TripID:     tripID,
		ReviewerID: reviewerID,
		RevieweeID: in.RevieweeID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  s.now(),
	}
	if err := s.reviews(s.DB).Create(ctx, &rv); err != nil {
		if intdb.IsUniqueViolation(err) {
			return models.Review{}, domain.ConflictError{Resource: "review", Msg: "already reviewed for this trip", Err: err}
		}
		return models.Review{}, internal(err)
	}
	s.event(ctx, "review", "create", "review recorded", zap.Int64("review_id", rv.ID), zap.Int64("trip_id", tripID))
	return rv, nil
}

func (s ReviewService) ListForUser(ctx context.Context, userID int64, page domain.Pagination) (domain.Page[models.Review], error) {
	if _, err := s.users(s.DB).GetByID(ctx, userID); err != nil {
		return domain.Page[models.Review]{}, notFound("user", err)
	}
	items, total, err := s.reviews(s.DB).ListForUser(ctx, userID, page)
	if err != nil {
		return domain.Page[models.Review]{}, internal(err)
	}
	page.Total = total
	return domain.Page[models.Review]{Items: items, Pagination: page}, nil
}
