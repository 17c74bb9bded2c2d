package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
)

type UpdateCommentInput struct {
	Text *string
}

type CommentService interface {
	ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, caller permissions.Caller, titleID, reviewID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, caller permissions.Caller, titleID, reviewID, commentID int64, in UpdateCommentInput) (*models.Comment, error)
	Delete(ctx context.Context, caller permissions.Caller, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if _, err := s.resolveReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	return s.findComment(ctx, titleID, reviewID, commentID)
}

func (s *commentService) Create(ctx context.Context, caller permissions.Caller, titleID, reviewID int64, text string) (*models.Comment, error) {
	if err := authorize(permissions.ResourceComment, permissions.ActionCreate, caller, ""); err != nil {
		return nil, err
	}
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: caller.ID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = models.User{ID: caller.ID, Username: caller.Username}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, caller permissions.Caller, titleID, reviewID, commentID int64, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(permissions.ResourceComment, permissions.ActionUpdate, caller, comment.AuthorID); err != nil {
		return nil, err
	}

	if in.Text != nil {
		if *in.Text == "" {
			return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
		}
		comment.Text = *in.Text
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, caller permissions.Caller, titleID, reviewID, commentID int64) error {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := authorize(permissions.ResourceComment, permissions.ActionDelete, caller, comment.AuthorID); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

// resolveReview finds the review through both path identifiers. A review
// that exists under a different title is treated as missing.
func (s *commentService) resolveReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d on title %d", ErrNotFound, reviewID, titleID)
		}
		return nil, err
	}
	return review, nil
}

func (s *commentService) findComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(ctx, review.ID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d on review %d", ErrNotFound, commentID, reviewID)
		}
		return nil, err
	}
	return comment, nil
}
