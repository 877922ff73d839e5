package handler

import (
	"errors"
	"net/http"

	"github.com/poofware/cinema-api/internal/http/middleware"
	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/observability"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type registerResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		observability.RecordAuthLogin("invalid_request")
		badRequest(w, r, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		observability.RecordAuthLogin("invalid_request")
		badRequest(w, r, "username and password are required")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.RecordAuthLogin("rejected")
			observability.Audit(r, "login_rejected", "username", req.Username)
			response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password", nil)
			return
		}
		observability.RecordAuthLogin("error")
		writeServiceError(w, r, err)
		return
	}

	observability.RecordAuthLogin("success")
	observability.Audit(r, "login", "username", req.Username)
	response.JSON(w, r, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		observability.RecordAuthRegister("invalid_request")
		badRequest(w, r, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		observability.RecordAuthRegister("invalid_request")
		badRequest(w, r, "username, email and password are required")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			observability.RecordAuthRegister("conflict")
			response.Error(w, r, http.StatusConflict, "CONFLICT", "username or email already taken", nil)
			return
		}
		observability.RecordAuthRegister("error")
		writeServiceError(w, r, err)
		return
	}

	observability.RecordAuthRegister("success")
	observability.Audit(r, "register", "user_id", user.ID, "username", user.Username)
	response.JSON(w, r, http.StatusOK, registerResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Token:    token,
	})
}

// Logout runs behind the authentication gate, so the claims in the request
// context are already verified and unrevoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		observability.RecordAuthLogout("error")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingJTI):
			observability.RecordAuthLogout("invalid_token")
			badRequest(w, r, "token id (jti) not found in token")
		case errors.Is(err, service.ErrInvalidExpiry):
			observability.RecordAuthLogout("invalid_token")
			badRequest(w, r, "invalid token expiration claim")
		default:
			observability.RecordAuthLogout("error")
			response.Error(w, r, http.StatusServiceUnavailable, "BLACKLIST_UNAVAILABLE", "logout could not be completed", nil)
		}
		return
	}

	observability.RecordAuthLogout("success")
	observability.Audit(r, "logout", "username", claims.Username)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}
