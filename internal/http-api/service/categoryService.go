package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	Create(ctx context.Context, caller permissions.Caller, slug, name string) (*models.Category, error)
	Delete(ctx context.Context, caller permissions.Caller, slug string) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	limits validation.Limits
}

func NewCategoryService(repo repository.CategoryRepository, limits validation.Limits) CategoryService {
	return &categoryService{repo: repo, limits: limits}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

func (s *categoryService) Create(ctx context.Context, caller permissions.Caller, slug, name string) (*models.Category, error) {
	if err := authorize(permissions.ResourceCategory, permissions.ActionCreate, caller, ""); err != nil {
		return nil, err
	}
	if err := s.limits.Slug(slug); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	name = strings.TrimSpace(name)
	if err := s.limits.Name(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	c := &models.Category{Slug: slug, Name: name}
	if err := s.repo.Create(ctx, c); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, slug)
		}
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, caller permissions.Caller, slug string) error {
	if err := authorize(permissions.ResourceCategory, permissions.ActionDelete, caller, ""); err != nil {
		return err
	}
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %q", ErrNotFound, slug)
		}
		return err
	}
	return nil
}
