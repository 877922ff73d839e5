package service

import (
	"context"
	"fmt"
	"time"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/repository"
)

type MovieInput struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReleaseDate time.Time `json:"release_date"`
	Genre       string    `json:"genre"`
	DirectorID  uint      `json:"director_id"`
}

type MovieService struct {
	movies    repository.MovieRepository
	directors repository.DirectorRepository
}

func NewMovieService(movies repository.MovieRepository, directors repository.DirectorRepository) *MovieService {
	return &MovieService{movies: movies, directors: directors}
}

func (s *MovieService) Get(ctx context.Context, id uint) (*domain.Movie, error) {
	return s.movies.FindByID(ctx, id)
}

func (s *MovieService) List(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.Movie], error) {
	return s.movies.ListPaged(ctx, req)
}

// Create rejects a movie referencing a director that does not exist; no row
// is inserted in that case.
func (s *MovieService) Create(ctx context.Context, in MovieInput) (*domain.Movie, error) {
	if err := s.ensureDirector(ctx, in.DirectorID); err != nil {
		return nil, err
	}
	movie := &domain.Movie{
		Title:       in.Title,
		Description: in.Description,
		ReleaseDate: in.ReleaseDate.UTC(),
		Genre:       in.Genre,
		DirectorID:  in.DirectorID,
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) Update(ctx context.Context, id uint, in MovieInput) (*domain.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDirector(ctx, in.DirectorID); err != nil {
		return nil, err
	}
	movie.Title = in.Title
	movie.Description = in.Description
	movie.ReleaseDate = in.ReleaseDate.UTC()
	movie.Genre = in.Genre
	movie.DirectorID = in.DirectorID
	movie.Director = nil
	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, id uint) error {
	return s.movies.Delete(ctx, id)
}

func (s *MovieService) ensureDirector(ctx context.Context, id uint) error {
	if id == 0 {
		return repository.ErrDirectorNotFound
	}
	ok, err := s.directors.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check director: %w", err)
	}
	if !ok {
		return repository.ErrDirectorNotFound
	}
	return nil
}
