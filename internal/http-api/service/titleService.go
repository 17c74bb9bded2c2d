package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"
)

type CreateTitleInput struct {
	Name         string
	Year         int
	Description  string
	CategorySlug string
	GenreSlugs   []string
}

// UpdateTitleInput carries partial updates; nil means "leave unchanged". An
// explicit empty CategorySlug clears the category.
type UpdateTitleInput struct {
	Name         *string
	Year         *int
	Description  *string
	CategorySlug *string
	GenreSlugs   *[]string
}

// TitleInfo pairs a title with its read-time rating. Rating is nil until the
// title has at least one review.
type TitleInfo struct {
	Title  models.Title
	Rating *float64
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]TitleInfo, int64, error)
	Get(ctx context.Context, id int64) (*TitleInfo, error)
	Create(ctx context.Context, caller permissions.Caller, in CreateTitleInput) (*TitleInfo, error)
	Update(ctx context.Context, caller permissions.Caller, id int64, in UpdateTitleInput) (*TitleInfo, error)
	Delete(ctx context.Context, caller permissions.Caller, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	limits       validation.Limits
	now          func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	limits validation.Limits,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		limits:       limits,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]TitleInfo, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	averages, err := s.reviewRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]TitleInfo, 0, len(titles))
	for _, t := range titles {
		info := TitleInfo{Title: t}
		if avg, ok := averages[t.ID]; ok {
			v := avg
			info.Rating = &v
		}
		infos = append(infos, info)
	}
	return infos, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*TitleInfo, error) {
	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: title %d", ErrNotFound, id)
		}
		return nil, err
	}

	rating, err := s.reviewRepo.AverageScore(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TitleInfo{Title: *title, Rating: rating}, nil
}

func (s *titleService) Create(ctx context.Context, caller permissions.Caller, in CreateTitleInput) (*TitleInfo, error) {
	if err := authorize(permissions.ResourceTitle, permissions.ActionCreate, caller, ""); err != nil {
		return nil, err
	}
	if err := s.limits.Name(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.validateYear(in.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}

	if in.CategorySlug != "" {
		category, err := s.resolveCategory(ctx, in.CategorySlug)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	genres, err := s.resolveGenres(ctx, in.GenreSlugs)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	return &TitleInfo{Title: *title}, nil
}

func (s *titleService) Update(ctx context.Context, caller permissions.Caller, id int64, in UpdateTitleInput) (*TitleInfo, error) {
	if err := authorize(permissions.ResourceTitle, permissions.ActionUpdate, caller, ""); err != nil {
		return nil, err
	}

	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: title %d", ErrNotFound, id)
		}
		return nil, err
	}

	if in.Name != nil {
		if err := s.limits.Name(*in.Name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		title.Name = *in.Name
	}
	if in.Year != nil {
		if err := s.validateYear(*in.Year); err != nil {
			return nil, err
		}
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}
	if in.CategorySlug != nil {
		if *in.CategorySlug == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.resolveCategory(ctx, *in.CategorySlug)
			if err != nil {
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if in.GenreSlugs != nil {
		genres, err := s.resolveGenres(ctx, *in.GenreSlugs)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	rating, err := s.reviewRepo.AverageScore(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TitleInfo{Title: *title, Rating: rating}, nil
}

func (s *titleService) Delete(ctx context.Context, caller permissions.Caller, id int64) error {
	if err := authorize(permissions.ResourceTitle, permissions.ActionDelete, caller, ""); err != nil {
		return err
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: title %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *titleService) validateYear(year int) error {
	if current := s.now().Year(); year > current {
		return fmt.Errorf("%w: year %d is in the future", ErrInvalidInput, year)
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %q", ErrNotFound, slug)
		}
		return nil, err
	}
	return category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(dedupe(slugs)) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range slugs {
			if !found[slug] {
				return nil, fmt.Errorf("%w: genre %q", ErrNotFound, slug)
			}
		}
	}
	return genres, nil
}

func dedupe(slugs []string) []string {
	seen := make(map[string]bool, len(slugs))
	out := slugs[:0:0]
	for _, s := range slugs {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
