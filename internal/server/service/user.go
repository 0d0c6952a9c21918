package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/grapelabs/grape/internal/server/domain"
	"github.com/grapelabs/grape/internal/server/store"
	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/slogx"
)

// UserService covers the user management routes: listing, lookup,
// update and delete. Creation goes through AuthService.Register so the
// credential and profile handling stays in one place.
type UserService struct {
	Store store.Store
}

// List returns one page of users plus the total count for pagination.
// Page is 1-based.
func (s *UserService) List(ctx context.Context, page, limit int) ([]domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.Store.Users().ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, notFoundUser(id)
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateName changes a user's display name and returns the updated
// record.
func (s *UserService) UpdateName(ctx context.Context, id, name string) (domain.User, error) {
	if err := s.Store.Users().UpdateName(ctx, id, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, notFoundUser(id)
		}
		return domain.User{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a user. The profile goes with it via the FK cascade.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundUser(id)
		}
		return err
	}

	slogx.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

func notFoundUser(id string) error {
	return apperr.New(apperr.KindNotFound, fmt.Sprintf("User with ID %s not found", id))
}
