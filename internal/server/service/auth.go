package service

import (
	"context"
	"errors"

	"github.com/grapelabs/grape/internal/server/domain"
	"github.com/grapelabs/grape/internal/server/store"
	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/cryptox"
	"github.com/grapelabs/grape/pkg/idx"
	"github.com/grapelabs/grape/pkg/slogx"
)

// AuthService orchestrates the credential verifier, the token service
// and the user store to implement register, login and identify. It
// raises tagged failures and never touches HTTP.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// Register creates a new user with an empty profile. The user row and
// the profile row are written in one transaction. Fails with Conflict
// when the email is already registered.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.User{}, apperr.New(apperr.KindConflict, "User already exists with this email")
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:     idx.New().String(),
			UserID: user.ID,
		})
	})
	if err != nil {
		// A concurrent register can win the race between the lookup
		// and the insert; the unique index is the arbiter.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, apperr.New(apperr.KindConflict, "User already exists with this email")
		}
		return domain.User{}, err
	}

	log.Info("user registered", "user_id", user.ID)

	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password produce the identical failure so callers cannot enumerate
// accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", invalidCredentials()
		}
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login failed", "user_id", user.ID)
		return domain.User{}, "", invalidCredentials()
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", err
	}

	log.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// GetByID resolves a user id to its record.
func (s *AuthService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, apperr.New(apperr.KindNotFound, "User not found")
		}
		return domain.User{}, err
	}
	return user, nil
}

func invalidCredentials() error {
	return apperr.New(apperr.KindInvalidCredentials, "Invalid email or password")
}
