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

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	Create(ctx context.Context, caller permissions.Caller, slug, name string) (*models.Genre, error)
	Delete(ctx context.Context, caller permissions.Caller, slug string) error
}

type genreService struct {
	repo   repository.GenreRepository
	limits validation.Limits
}

func NewGenreService(repo repository.GenreRepository, limits validation.Limits) GenreService {
	return &genreService{repo: repo, limits: limits}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

func (s *genreService) Create(ctx context.Context, caller permissions.Caller, slug, name string) (*models.Genre, error) {
	if err := authorize(permissions.ResourceGenre, permissions.ActionCreate, caller, ""); err != nil {
		return nil, err
	}
	if err := s.limits.Slug(slug); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	name = strings.TrimSpace(name)
	if err := s.limits.Name(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	g := &models.Genre{Slug: slug, Name: name}
	if err := s.repo.Create(ctx, g); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: genre slug %q already exists", ErrConflict, slug)
		}
		return nil, err
	}
	return g, nil
}

func (s *genreService) Delete(ctx context.Context, caller permissions.Caller, slug string) error {
	if err := authorize(permissions.ResourceGenre, permissions.ActionDelete, caller, ""); err != nil {
		return err
	}
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: genre %q", ErrNotFound, slug)
		}
		return err
	}
	return nil
}
