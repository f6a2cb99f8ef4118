package core

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	Position     string    `json:"position"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserFilter struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

// UserUpdate carries an admin edit; nil fields keep their stored value.
type UserUpdate struct {
	Name       *string
	Email      *string
	Department *string
	Position   *string
	IsActive   *bool
}
