package handler

import (
	"net/http"

	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/observability"
	"github.com/poofware/cinema-api/internal/service"
)

// UserHandler serves the admin-only user management endpoints. Route-level
// role enforcement happens in the router; handlers assume an admin caller.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		badRequest(w, r, "username, email and password are required")
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user_created", "user_id", user.ID, "username", user.Username)
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	var in service.UserInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if in.ID != 0 && in.ID != id {
		badRequest(w, r, "body id does not match url id")
		return
	}
	if in.Username == "" || in.Email == "" {
		badRequest(w, r, "username and email are required")
		return
	}
	user, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user_updated", "user_id", user.ID)
	response.NoContent(w)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user_deleted", "user_id", id)
	response.NoContent(w)
}
