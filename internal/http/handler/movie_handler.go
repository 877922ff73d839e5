package handler

import (
	"errors"
	"net/http"

	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/service"
)

type MovieHandler struct {
	movies *service.MovieService
}

func NewMovieHandler(movies *service.MovieService) *MovieHandler {
	return &MovieHandler{movies: movies}
}

func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.movies.List(r.Context(), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid movie id")
		return
	}
	movie, err := h.movies.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, movie)
}

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.MovieInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if in.Title == "" {
		badRequest(w, r, "title is required")
		return
	}
	movie, err := h.movies.Create(r.Context(), in)
	if err != nil {
		// Referencing an unknown director is an input error, not a lookup
		// failure on the resource being created.
		if errors.Is(err, repository.ErrDirectorNotFound) {
			badRequest(w, r, "director does not exist")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, movie)
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid movie id")
		return
	}
	var in service.MovieInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if in.ID != 0 && in.ID != id {
		badRequest(w, r, "body id does not match url id")
		return
	}
	if in.Title == "" {
		badRequest(w, r, "title is required")
		return
	}
	if _, err := h.movies.Update(r.Context(), id, in); err != nil {
		if errors.Is(err, repository.ErrDirectorNotFound) {
			badRequest(w, r, "director does not exist")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid movie id")
		return
	}
	if err := h.movies.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}
