package domain

import "time"

// Roles a user can hold. New accounts are regular users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the principal record. Identity is the immutable ID; Email is
// unique across all users. PasswordHash never leaves the service.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // argon2id encoded
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the outward projection of a user. The credential is
// deliberately absent.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns the projection safe to send to clients.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
