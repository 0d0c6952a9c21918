package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grapelabs/grape/internal/server/service"
	"github.com/grapelabs/grape/pkg/apperr"
)

func TestUserServiceList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := newAuthService(t, nil)
	users := &service.UserService{Store: auth.Store}

	for i := range 5 {
		_, err := auth.Register(ctx, fmt.Sprintf("user%d@example.com", i), "Passw0rd", fmt.Sprintf("User %d", i))
		require.NoError(t, err)
	}

	t.Run("pages are windowed with a stable total", func(t *testing.T) {
		page1, total, err := users.List(ctx, 1, 2)
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, page1, 2)

		page3, total, err := users.List(ctx, 3, 2)
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, page3, 1)
	})

	t.Run("out-of-range parameters are clamped", func(t *testing.T) {
		all, total, err := users.List(ctx, 0, -7)
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Len(t, all, 5) // default limit 20 covers everything

		none, total, err := users.List(ctx, 9, 2)
		require.NoError(t, err)
		require.Equal(t, 5, total)
		require.Empty(t, none)
	})
}

func TestUserServiceUpdateName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := newAuthService(t, nil)
	users := &service.UserService{Store: auth.Store}

	created, err := auth.Register(ctx, "alice@example.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	updated, err := users.UpdateName(ctx, created.ID, "Alice B.")
	require.NoError(t, err)
	require.Equal(t, "Alice B.", updated.Name)
	require.Equal(t, created.Email, updated.Email)

	_, err = users.UpdateName(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "Nobody")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUserServiceDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := newAuthService(t, nil)
	users := &service.UserService{Store: auth.Store}

	created, err := auth.Register(ctx, "alice@example.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, created.ID))

	_, err = users.Get(ctx, created.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = users.Delete(ctx, created.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
