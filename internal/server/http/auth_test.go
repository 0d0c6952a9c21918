package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grapelabs/grape/pkg/httpx"
)

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	userID := env.register(t, "alice@example.com", "Passw0rd", "Alice")

	t.Run("duplicate register conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
			"email": "alice@example.com", "password": "Different1", "name": "Mallory",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "User already exists with this email", decodeEnvelope(t, rec).Error.Message)
	})

	t.Run("login sets the token cookie", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": "alice@example.com", "password": "Passw0rd",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == httpx.TokenCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.NotEmpty(t, cookie.Value)
		require.Equal(t, "/", cookie.Path)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, 3600, cookie.MaxAge) // matches the configured token TTL

		var data struct {
			User struct {
				ID           string `json:"id"`
				Email        string `json:"email"`
				PasswordHash string `json:"passwordHash"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
		require.Equal(t, userID, data.User.ID)
		require.Empty(t, data.User.PasswordHash, "credential must never be serialized")
	})

	t.Run("me answers with the cookie", func(t *testing.T) {
		token := env.login(t, "alice@example.com", "Passw0rd")

		rec := env.do(t, http.MethodGet, "/v1/auth/me", nil, withCookie(token))
		require.Equal(t, http.StatusOK, rec.Code)

		var data struct {
			User struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
		require.Equal(t, userID, data.User.ID)
		require.Equal(t, "alice@example.com", data.User.Email)
	})

	t.Run("me answers with a bearer header", func(t *testing.T) {
		token := env.login(t, "alice@example.com", "Passw0rd")

		rec := env.do(t, http.MethodGet, "/v1/auth/me", nil, withBearer(token))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password is indistinguishable from unknown email", func(t *testing.T) {
		wrong := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": "alice@example.com", "password": "WrongPass1",
		})
		unknown := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
			"email": "nobody@example.com", "password": "WrongPass1",
		})

		require.Equal(t, http.StatusBadRequest, wrong.Code)
		require.Equal(t, http.StatusBadRequest, unknown.Code)
		require.Equal(t, "Invalid email or password", decodeEnvelope(t, wrong).Error.Message)
		require.Equal(t, decodeEnvelope(t, wrong).Error.Message, decodeEnvelope(t, unknown).Error.Message)
	})

	t.Run("me without a token is unauthorized", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/auth/me", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Unauthorized", decodeEnvelope(t, rec).Error.Message)
	})

	t.Run("me with an expired token is unauthorized", func(t *testing.T) {
		token := env.login(t, "alice@example.com", "Passw0rd")

		env.current = env.current.Add(2 * time.Hour)
		defer func() { env.current = env.current.Add(-2 * time.Hour) }()

		rec := env.do(t, http.MethodGet, "/v1/auth/me", nil, withCookie(token))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Unauthorized", decodeEnvelope(t, rec).Error.Message)
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/logout", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == httpx.TokenCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.Empty(t, cookie.Value)
		require.Negative(t, cookie.MaxAge)

		var data struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
		require.Equal(t, "Logged out successfully", data.Message)
	})
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	t.Run("bad email and weak password are both reported", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
			"email": "not-an-email", "password": "weak",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Equal(t, "Validation error", body.Error.Message)

		paths := make(map[string]string)
		for _, d := range body.Error.Details {
			paths[d.Path] = d.Message
		}
		require.Equal(t, "Invalid email format", paths["email"])
		require.Contains(t, paths, "password")
	})

	t.Run("password composition rules", func(t *testing.T) {
		cases := []struct {
			password string
			want     string
		}{
			{"alllowercase1", "password must contain at least one uppercase letter"},
			{"ALLUPPERCASE1", "password must contain at least one lowercase letter"},
			{"NoDigitsHere", "password must contain at least one number"},
			{"Sh0rt", "password must be at least 8 characters"},
		}
		for _, tc := range cases {
			rec := env.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
				"email": "alice@example.com", "password": tc.password,
			})
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeEnvelope(t, rec)
			var messages []string
			for _, d := range body.Error.Details {
				messages = append(messages, d.Message)
			}
			require.Contains(t, messages, tc.want, "password %q", tc.password)
		}
	})

	t.Run("malformed JSON body", func(t *testing.T) {
		rec := env.doRaw(t, http.MethodPost, "/v1/auth/register", "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid JSON in request body", decodeEnvelope(t, rec).Error.Message)
	})
}

func TestAuthRateLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithLimits(t,
		httpx.RateLimitConfig{Window: time.Minute, Max: 1000, Message: "Too many requests, please try again later"},
		httpx.RateLimitConfig{Window: 15 * time.Minute, Max: 3, Message: "Too many login attempts, please try again later"},
	)

	login := map[string]string{"email": "nobody@example.com", "password": "WrongPass1"}

	for range 3 {
		rec := env.do(t, http.MethodPost, "/v1/auth/login", login)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}

	t.Run("over budget is throttled", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/login", login)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "Too many login attempts, please try again later", decodeEnvelope(t, rec).Error.Message)
	})

	t.Run("sibling auth route has its own budget", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
			"email": "alice@example.com", "password": "Passw0rd", "name": "Alice",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("budget recovers after the window", func(t *testing.T) {
		env.current = env.current.Add(16 * time.Minute)

		rec := env.do(t, http.MethodPost, "/v1/auth/login", login)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	})
}
