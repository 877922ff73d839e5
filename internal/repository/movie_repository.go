package repository

import (
	"context"
	"errors"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/observability"

	"gorm.io/gorm"
)

var ErrMovieNotFound = errors.New("movie not found")

type MovieRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Movie, error)
	Create(ctx context.Context, movie *domain.Movie) error
	Update(ctx context.Context, movie *domain.Movie) error
	Delete(ctx context.Context, id uint) error
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Movie], error)
}

type GormMovieRepository struct{ db *gorm.DB }

func NewMovieRepository(db *gorm.DB) MovieRepository { return &GormMovieRepository{db: db} }

func (r *GormMovieRepository) FindByID(ctx context.Context, id uint) (*domain.Movie, error) {
	var m domain.Movie
	err := r.db.WithContext(ctx).Preload("Director").First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "movie", "find_by_id", "not_found")
			return nil, ErrMovieNotFound
		}
		observability.RecordRepositoryOperation(ctx, "movie", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "movie", "find_by_id", "success")
	return &m, nil
}

func (r *GormMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	err := r.db.WithContext(ctx).Create(movie).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "movie", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "movie", "create", "success")
	return nil
}

func (r *GormMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	err := r.db.WithContext(ctx).Save(movie).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "movie", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "movie", "update", "success")
	return nil
}

func (r *GormMovieRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Movie{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "movie", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "movie", "delete", "not_found")
		return ErrMovieNotFound
	}
	observability.RecordRepositoryOperation(ctx, "movie", "delete", "success")
	return nil
}

func (r *GormMovieRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Movie], error) {
	req = normalizePageRequest(req)
	result := PageResult[domain.Movie]{Page: req.Page, PageSize: req.PageSize}

	base := r.db.WithContext(ctx).Model(&domain.Movie{})
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "movie", "list_paged", "error")
		return PageResult[domain.Movie]{}, err
	}
	offset := (req.Page - 1) * req.PageSize
	if err := r.db.WithContext(ctx).Preload("Director").
		Order("id").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "movie", "list_paged", "error")
		return PageResult[domain.Movie]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "movie", "list_paged", "success")
	return result, nil
}
