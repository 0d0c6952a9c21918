package httpx

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// SecurityHeaders sets the standard browser hardening headers on every
// response.
func SecurityHeaders(production bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "no-referrer-when-downgrade")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if production {
				// Too restrictive for local dev tooling.
				h.Set("Content-Security-Policy", "default-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORSConfig controls the cross-origin policy for the browser client.
type CORSConfig struct {
	// Origins is the allowlist. Credentials mode forbids a wildcard
	// response, so the request origin is echoed back when allowed.
	Origins        []string
	Methods        []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAgeSeconds  int
}

// DefaultCORSConfig allows the local development client.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins:        []string{"http://localhost:3001"},
		Methods:        []string{"GET", "HEAD", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Set-Cookie"},
		MaxAgeSeconds:  86400,
	}
}

// CORS handles preflight requests and sets the cross-origin headers for
// allowed origins. Requests are always served with credentials enabled
// since authentication rides on a cookie.
func CORS(cfg CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && originAllowed(cfg.Origins, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				if len(cfg.ExposedHeaders) > 0 {
					h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ","))
				}

				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", strings.Join(cfg.Methods, ","))
					h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAgeSeconds))
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}
