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

const (
	minScore = 1
	maxScore = 10
)

type UpdateReviewInput struct {
	Text  *string
	Score *int
}

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, caller permissions.Caller, titleID int64, text string, score int) (*models.Review, error)
	Update(ctx context.Context, caller permissions.Caller, titleID, reviewID int64, in UpdateReviewInput) (*models.Review, error)
	Delete(ctx context.Context, caller permissions.Caller, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	return s.findReview(ctx, titleID, reviewID)
}

// Create posts a review. Each user gets one review per title; the composite
// unique index backs up the pre-check under concurrent requests.
func (s *reviewService) Create(ctx context.Context, caller permissions.Caller, titleID int64, text string, score int) (*models.Review, error) {
	if err := authorize(permissions.ResourceReview, permissions.ActionCreate, caller, ""); err != nil {
		return nil, err
	}
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	if _, err := s.reviewRepo.FindByTitleAndAuthor(ctx, titleID, caller.ID); err == nil {
		return nil, fmt.Errorf("%w: you already reviewed this title", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: caller.ID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: you already reviewed this title", ErrConflict)
		}
		return nil, err
	}
	review.Author = models.User{ID: caller.ID, Username: caller.Username}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, caller permissions.Caller, titleID, reviewID int64, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(permissions.ResourceReview, permissions.ActionUpdate, caller, review.AuthorID); err != nil {
		return nil, err
	}

	if in.Text != nil {
		if *in.Text == "" {
			return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
		}
		review.Text = *in.Text
	}
	if in.Score != nil {
		if err := validateScore(*in.Score); err != nil {
			return nil, err
		}
		review.Score = *in.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, caller permissions.Caller, titleID, reviewID int64) error {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := authorize(permissions.ResourceReview, permissions.ActionDelete, caller, review.AuthorID); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, review.ID)
}

func (s *reviewService) checkTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.FindByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: title %d", ErrNotFound, titleID)
		}
		return err
	}
	return nil
}

func (s *reviewService) findReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d on title %d", ErrNotFound, reviewID, titleID)
		}
		return nil, err
	}
	return review, nil
}

func validateScore(score int) error {
	if score < minScore || score > maxScore {
		return fmt.Errorf("%w: score must be between %d and %d", ErrInvalidInput, minScore, maxScore)
	}
	return nil
}
