package repository

import (
	"context"
	"errors"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/observability"

	"gorm.io/gorm"
)

var ErrDirectorNotFound = errors.New("director not found")

type DirectorRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Director, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, director *domain.Director) error
	Update(ctx context.Context, director *domain.Director) error
	Delete(ctx context.Context, id uint) error
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Director], error)
}

type GormDirectorRepository struct{ db *gorm.DB }

func NewDirectorRepository(db *gorm.DB) DirectorRepository { return &GormDirectorRepository{db: db} }

func (r *GormDirectorRepository) FindByID(ctx context.Context, id uint) (*domain.Director, error) {
	var d domain.Director
	err := r.db.WithContext(ctx).Preload("Movies").First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "director", "find_by_id", "not_found")
			return nil, ErrDirectorNotFound
		}
		observability.RecordRepositoryOperation(ctx, "director", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "director", "find_by_id", "success")
	return &d, nil
}

func (r *GormDirectorRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Director{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "director", "exists", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "director", "exists", "success")
	return count > 0, nil
}

func (r *GormDirectorRepository) Create(ctx context.Context, director *domain.Director) error {
	err := r.db.WithContext(ctx).Create(director).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "director", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "director", "create", "success")
	return nil
}

func (r *GormDirectorRepository) Update(ctx context.Context, director *domain.Director) error {
	err := r.db.WithContext(ctx).Save(director).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "director", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "director", "update", "success")
	return nil
}

func (r *GormDirectorRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Director{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "director", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "director", "delete", "not_found")
		return ErrDirectorNotFound
	}
	observability.RecordRepositoryOperation(ctx, "director", "delete", "success")
	return nil
}

func (r *GormDirectorRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Director], error) {
	req = normalizePageRequest(req)
	result := PageResult[domain.Director]{Page: req.Page, PageSize: req.PageSize}

	base := r.db.WithContext(ctx).Model(&domain.Director{})
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "director", "list_paged", "error")
		return PageResult[domain.Director]{}, err
	}
	offset := (req.Page - 1) * req.PageSize
	if err := base.Order("id").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "director", "list_paged", "error")
		return PageResult[domain.Director]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "director", "list_paged", "success")
	return result, nil
}
