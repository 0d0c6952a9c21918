package store

import (
	"context"
	"errors"

	"github.com/grapelabs/grape/internal/server/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement
// this; the rest of the service only ever talks to it through these
// sub-repositories and never issues raw queries.
type Store interface {
	Users() Users
	Profiles() Profiles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn
	// returns nil and rolling back otherwise. This is the preferred way
	// to run multi-step operations that must be atomic (e.g. creating a
	// user together with its profile).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and duplicate checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via
	// ULID). Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns one page of users ordered by creation date.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// CountUsers returns the total number of users, for pagination.
	CountUsers(ctx context.Context) (int, error)

	// UpdateName mutates the display name and bumps updated_at.
	UpdateName(ctx context.Context, userID string, name string) error

	// DeleteUser cascades to the profile (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Profiles interface {
	// CreateProfile inserts a profile row for a user.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// GetProfileByUserID returns the profile owned by userID.
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
}
