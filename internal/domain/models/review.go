package models

import "time"

type Review struct {
	ID           int64     `json:"id"`
	TripID       int64     `json:"tripId"`
	ReviewerID   int64     `json:"reviewerId"`
	RevieweeID   int64     `json:"revieweeId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
	ReviewerName string    `json:"reviewerName,omitempty"`
}
