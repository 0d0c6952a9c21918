package http

import (
	"net/http"

	"github.com/grapelabs/grape/internal/server/domain"
	"github.com/grapelabs/grape/internal/server/service"
	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/httpx"
	"github.com/grapelabs/grape/pkg/jwtx"
)

type AuthHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

// userPayload is the {user: ...} shape the auth endpoints respond with.
type userPayload struct {
	User domain.PublicUser `json:"user"`
}

// HandleRegister creates an account and answers 201 with the public
// projection.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeValid(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	user, err := h.AuthService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, userPayload{User: user.Public()})
}

// HandleLogin checks credentials and sets the token cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeValid(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	user, token, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	ttl := h.TokenService.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
	})

	httpx.WriteSuccess(w, http.StatusOK, userPayload{User: user.Public()})
}

// HandleLogout clears the token cookie. Tokens are stateless, so all
// logout can do is tell the client to discard its copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	httpx.WriteSuccess(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleMe returns the caller's own record. AuthnMiddleware has already
// placed the subject id in the context.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(ctx, w, apperr.New(apperr.KindUnauthorized, "Unauthorized"))
		return
	}

	user, err := h.AuthService.GetByID(ctx, userID)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, userPayload{User: user.Public()})
}
