package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256([]byte("too short"), "grape", nil)
	require.Error(t, err)
}

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewHS256(testSecret, "grape", func() time.Time { return current })
	require.NoError(t, err)

	token, err := codec.Sign(NewClaims("user-123", "grape", time.Hour, current))
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
}

func TestHS256ExpiryUsesInjectedClock(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewHS256(testSecret, "grape", func() time.Time { return current })
	require.NoError(t, err)

	token, err := codec.Sign(NewClaims("user-123", "grape", time.Hour, current))
	require.NoError(t, err)

	// Still valid just before expiry.
	current = current.Add(59 * time.Minute)
	_, err = codec.Verify(token)
	require.NoError(t, err)

	// Expired once the clock passes exp.
	current = current.Add(2 * time.Minute)
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256FailureModesCollapse(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewHS256(testSecret, "grape", func() time.Time { return current })
	require.NoError(t, err)

	valid, err := codec.Sign(NewClaims("user-123", "grape", time.Hour, current))
	require.NoError(t, err)

	other, err := NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "grape", func() time.Time { return current })
	require.NoError(t, err)
	foreign, err := other.Sign(NewClaims("user-123", "grape", time.Hour, current))
	require.NoError(t, err)

	expiredClock := current.Add(48 * time.Hour)
	expiredCodec, err := NewHS256(testSecret, "grape", func() time.Time { return expiredClock })
	require.NoError(t, err)

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]

		_, err := codec.Verify(tampered)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		_, err := codec.Verify(foreign)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := codec.Verify("not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := expiredCodec.Verify(valid)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHS256IssuerEnforced(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewHS256(testSecret, "grape", func() time.Time { return current })
	require.NoError(t, err)

	token, err := codec.Sign(NewClaims("user-123", "someone-else", time.Hour, current))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256RejectsMissingSubject(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewHS256(testSecret, "grape", func() time.Time { return current })
	require.NoError(t, err)

	token, err := codec.Sign(NewClaims("", "grape", time.Hour, current))
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
