package handler

import (
	"net/http"

	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/service"
)

type DirectorHandler struct {
	directors *service.DirectorService
}

func NewDirectorHandler(directors *service.DirectorService) *DirectorHandler {
	return &DirectorHandler{directors: directors}
}

func (h *DirectorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.directors.List(r.Context(), pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *DirectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid director id")
		return
	}
	director, err := h.directors.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, director)
}

func (h *DirectorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.DirectorInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if in.Name == "" || in.Surname == "" {
		badRequest(w, r, "name and surname are required")
		return
	}
	director, err := h.directors.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, director)
}

func (h *DirectorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid director id")
		return
	}
	var in service.DirectorInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if in.ID != 0 && in.ID != id {
		badRequest(w, r, "body id does not match url id")
		return
	}
	if in.Name == "" || in.Surname == "" {
		badRequest(w, r, "name and surname are required")
		return
	}
	if _, err := h.directors.Update(r.Context(), id, in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *DirectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, "invalid director id")
		return
	}
	if err := h.directors.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}
