package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grapelabs/grape/internal/server/service"
	"github.com/grapelabs/grape/internal/server/store"
	"github.com/grapelabs/grape/internal/server/store/drivers/sqlite"
	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTokenService(t *testing.T, clock func() time.Time) *service.TokenService {
	t.Helper()

	codec, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "grape", clock)
	require.NoError(t, err)

	return &service.TokenService{
		Signer:   codec,
		Verifier: codec,
		Issuer:   "grape",
		TTL:      time.Hour,
		Now:      clock,
	}
}

func newAuthService(t *testing.T, clock func() time.Time) *service.AuthService {
	t.Helper()
	return &service.AuthService{
		Store:  newTestStore(t),
		Tokens: newTokenService(t, clock),
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthService(t, nil)

	created, err := svc.Register(ctx, "alice@example.com", "Passw0rd", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "alice@example.com", created.Email)
	require.Equal(t, "Alice", created.Name)
	require.Equal(t, "user", created.Role)
	require.False(t, created.CreatedAt.IsZero())

	user, token, err := svc.Login(ctx, "alice@example.com", "Passw0rd")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.NotEmpty(t, token)

	subject, err := svc.Tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, created.ID, subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthService(t, nil)

	first, err := svc.Register(ctx, "alice@example.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "Different1", "Mallory")
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Equal(t, "User already exists with this email", err.Error())

	// The stored account is untouched: the original password still works.
	user, _, err := svc.Login(ctx, "alice@example.com", "Passw0rd")
	require.NoError(t, err)
	require.Equal(t, first.ID, user.ID)
	require.Equal(t, "Alice", user.Name)
}

func TestLoginEnumerationResistance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthService(t, nil)

	_, err := svc.Register(ctx, "alice@example.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "Passw0rd")
	_, _, wrongErr := svc.Login(ctx, "alice@example.com", "WrongPass1")

	// Unknown account and wrong password are indistinguishable.
	require.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(unknownErr))
	require.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(wrongErr))
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
	require.Equal(t, "Invalid email or password", wrongErr.Error())
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	svc := newAuthService(t, nil)

	_, err := svc.GetByID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTokenServiceExpiry(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTokenService(t, func() time.Time { return current })

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)

	subject, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", subject)

	current = current.Add(2 * time.Hour)
	_, err = tokens.Verify(token)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
