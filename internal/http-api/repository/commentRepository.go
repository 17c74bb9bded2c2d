package repository

import (
	"context"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND review_id = ?", commentID, reviewID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Preload("Author").
		Order("pub_date DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}
