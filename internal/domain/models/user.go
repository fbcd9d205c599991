package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is what other users may see of an account.
type PublicUser struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	CreatedAt     time.Time `json:"createdAt"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// UserUpdate supports PATCH-style updates via key presence.
type UserUpdate struct {
	Name  *string
	Phone *string
	Bio   *string
}
