package repository

import (
	"context"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	FindByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	AverageScore(ctx context.Context, titleID int64) (*float64, error)
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID resolves a review through its enclosing title. A review id that
// exists under a different title is a miss, same as an unknown id.
func (r *reviewRepository) FindByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageScore returns the mean review score for a title, nil when the title
// has no reviews yet.
func (r *reviewRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}

// AverageScores returns mean scores grouped by title for a listing page.
// Titles without reviews are absent from the map.
func (r *reviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	if len(titleIDs) == 0 {
		return map[int64]float64{}, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]float64, len(rows))
	for _, row := range rows {
		out[row.TitleID] = row.Average
	}
	return out, nil
}
