package service

import (
	"context"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/repository"
)

type DirectorInput struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

type DirectorService struct {
	directors repository.DirectorRepository
}

func NewDirectorService(directors repository.DirectorRepository) *DirectorService {
	return &DirectorService{directors: directors}
}

func (s *DirectorService) Get(ctx context.Context, id uint) (*domain.Director, error) {
	return s.directors.FindByID(ctx, id)
}

func (s *DirectorService) List(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.Director], error) {
	return s.directors.ListPaged(ctx, req)
}

func (s *DirectorService) Create(ctx context.Context, in DirectorInput) (*domain.Director, error) {
	director := &domain.Director{Name: in.Name, Surname: in.Surname}
	if err := s.directors.Create(ctx, director); err != nil {
		return nil, err
	}
	return director, nil
}

func (s *DirectorService) Update(ctx context.Context, id uint, in DirectorInput) (*domain.Director, error) {
	director, err := s.directors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	director.Name = in.Name
	director.Surname = in.Surname
	if err := s.directors.Update(ctx, director); err != nil {
		return nil, err
	}
	return director, nil
}

func (s *DirectorService) Delete(ctx context.Context, id uint) error {
	return s.directors.Delete(ctx, id)
}
