// Package handler contains the HTTP request handlers for the catalog and
// auth endpoints. Handlers decode and validate input, call the service
// layer, and translate service errors into envelope responses.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/repository"
)

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func idParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func pageRequest(r *http.Request) repository.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return repository.PageRequest{Page: page, PageSize: size}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

// writeServiceError maps the repository sentinels onto HTTP statuses and
// logs anything unexpected before answering 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrDirectorNotFound),
		errors.Is(err, repository.ErrMovieNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, repository.ErrDuplicateUser):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "username or email already taken", nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}
