package repository

import (
	"context"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Category{})
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

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	// titles referencing the category keep existing with a cleared category_id
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
