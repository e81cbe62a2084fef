package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClientRole = "client"
	AdminRole  = "admin"
)

type User struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	Phone            string    `json:"phone"`
	Role             string    `json:"role"`
	PictureObjectKey string    `json:"-"`
	PictureURL       string    `json:"picture_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserUpdate carries a partial profile update; nil fields are left as is.
type UserUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == AdminRole
}
