package http

import (
	"net/http"
	"strconv"

	"github.com/grapelabs/grape/internal/server/domain"
	"github.com/grapelabs/grape/internal/server/service"
	"github.com/grapelabs/grape/pkg/httpx"
)

type UsersHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

// HandleList returns one page of users with pagination meta.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	users, total, err := h.UserService.List(ctx, page, limit)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	projected := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		projected = append(projected, u.Public())
	}

	httpx.WritePage(w, http.StatusOK, projected, page, limit, total)
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.Get(ctx, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, user.Public())
}

// HandleCreate makes a new account through the same path as register so
// hashing and profile creation are not duplicated here.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	httpx.WriteSuccess(w, http.StatusCreated, user.Public())
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateUserRequest
	if err := decodeValid(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	user, err := h.UserService.UpdateName(ctx, r.PathValue("id"), req.Name)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, user.Public())
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	user, err := h.UserService.Get(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	if err := h.UserService.Delete(ctx, id); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, user.Public())
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
