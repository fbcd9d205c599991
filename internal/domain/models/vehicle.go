package models

import "time"

type Vehicle struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Color       string    `json:"color"`
	PlateNumber string    `json:"plateNumber"`
	Seats       int       `json:"seats"`
	CreatedAt   time.Time `json:"createdAt"`
}
