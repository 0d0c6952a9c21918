package domain

import "time"

// Profile is the per-user profile created empty at registration.
type Profile struct {
	ID        string
	UserID    string
	Bio       string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
