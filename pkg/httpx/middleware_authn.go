package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/jwtx"
	"github.com/grapelabs/grape/pkg/slogx"
)

// TokenCookieName is the cookie the login endpoint sets and the authn
// middleware reads.
const TokenCookieName = "token"

// AuthnMiddleware gates protected routes. The bearer token is taken
// from the token cookie or the Authorization header, verified, and the
// resolved subject id is attached to the request context. Failures are
// a single Unauthorized kind regardless of cause and never reach the
// downstream handler.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := bearerToken(r)
			if raw == "" {
				WriteError(ctx, w, apperr.New(apperr.KindUnauthorized, "Unauthorized"))
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("token verification failed", "err", err)
				WriteError(ctx, w, apperr.New(apperr.KindUnauthorized, "Unauthorized"))
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken returns the raw token from the token cookie, falling back
// to an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return ""
}
