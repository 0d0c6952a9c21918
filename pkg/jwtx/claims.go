// Package jwtx signs and verifies the bearer tokens issued at login.
// Tokens are self-contained and stateless: a subject id plus an absolute
// expiry, signed with a server-held secret. Expiry is the only
// termination; there is no revocation list.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the login cookie lifetime of seven days.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims are the access-token claims. Only registered claims are used;
// the subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds claims for subject with an expiry of now+ttl.
func NewClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Signer is anything that can sign claims into a compact token.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a token and returns its claims when legitimate.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// ErrInvalidToken covers malformed tokens, bad signatures and expiry
// alike. Verification deliberately collapses the cause into one error
// so callers cannot be used as a tamper-vs-expiry oracle.
var ErrInvalidToken = errors.New("jwtx: invalid token")
