package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows a title listing. Zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Title{})

	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		q = q.Joins("JOIN title_genres tg ON tg.title_id = titles.id").
			Joins("JOIN genres ON genres.id = tg.genre_id").
			Where("genres.slug = ?", filter.GenreSlug)
	}
	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}

	var total int64
	if err := q.Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	var list []models.Title
	offset := (page - 1) * pageSize
	err := q.Distinct().
		Preload("Category").
		Preload("Genres").
		Order("titles.id desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&t, "titles.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the title together with its genre links.
func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title) error {
	// Select forces persistence of a cleared category_id
	return r.db.WithContext(ctx).Model(t).
		Select("Name", "Year", "Description", "CategoryID").
		Updates(t).Error
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Model(t).Association("Genres").Replace(genres)
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	// reviews, their comments and genre links go with it via FK cascades
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
