package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Jobas provide services; Links hire them.
const (
	RoleJoba = "joba"
	RoleLink = "link"
)

type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"display_name"`
	Role             string    `json:"role"`
	PasswordHash     string    `json:"-"`
	ContactNumber    string    `json:"contact_number,omitempty"`
	Carrier          string    `json:"carrier,omitempty"`
	NIF              string    `json:"nif,omitempty"`
	BalanceCents     int64     `json:"balance_cents"`
	TotalEarnedCents int64     `json:"total_earned_cents"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
