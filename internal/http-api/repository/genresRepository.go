package repository

import (
	"context"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Genre{})
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := q.Order("name asc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// FindBySlugs returns the genres for the given slugs. Callers compare the
// result length against the request to detect unknown slugs.
func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
