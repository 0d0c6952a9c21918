package service

import (
	"time"

	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/jwtx"
)

// TokenService issues and verifies the signed bearer tokens carried by
// the login cookie. It is pure: no state beyond the signing secret, and
// the clock is injected through the underlying codec.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

// Issue produces a signed token for subjectID expiring TTL from now.
func (s *TokenService) Issue(subjectID string) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	return s.Signer.Sign(jwtx.NewClaims(subjectID, s.Issuer, ttl, now().UTC()))
}

// Verify resolves a token to its subject id. Tampered, malformed and
// expired tokens all fail with the same Unauthorized kind.
func (s *TokenService) Verify(token string) (string, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindUnauthorized, "Unauthorized")
	}
	return claims.Subject, nil
}
