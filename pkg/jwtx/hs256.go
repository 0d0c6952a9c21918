package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 signs and verifies tokens with a shared HMAC-SHA256 secret. It
// implements both Signer and Verifier. The clock is injectable so tests
// can drive expiry deterministically.
type HS256 struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHS256 creates an HS256 codec. A nil clock defaults to time.Now.
func NewHS256(secret []byte, issuer string, now func() time.Time) (*HS256, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	if now == nil {
		now = time.Now
	}
	return &HS256{secret: secret, issuer: issuer, now: now}, nil
}

// Sign produces a compact signed token for the given claims.
func (h *HS256) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(h.secret)
}

// Verify parses and validates token. Signature, structure, issuer and
// expiry are all checked; every failure mode maps to ErrInvalidToken.
func (h *HS256) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
		jwt.WithExpirationRequired(),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
