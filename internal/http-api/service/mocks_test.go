package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameAndEmail(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByUsername(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockCodeRepository mocks the CodeRepository interface
type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) Store(ctx context.Context, username, codeHash string, ttl time.Duration) error {
	args := m.Called(ctx, username, codeHash, ttl)
	return args.Error(0)
}

func (m *MockCodeRepository) Get(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

// MockNotifier mocks the mailer.Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockGenreRepository mocks the GenreRepository interface
type MockGenreRepository struct {
	mock.Mock
}

func (m *MockGenreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Genre), args.Get(1).(int64), args.Error(2)
}

func (m *MockGenreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Genre), args.Error(1)
}

func (m *MockGenreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockGenreRepository) Create(ctx context.Context, g *models.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGenreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockTitleRepository mocks the TitleRepository interface
type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	args := m.Called(ctx, t, genres)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (*models.Review, error) {
	args := m.Called(ctx, titleID, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	args := m.Called(ctx, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockReviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	args := m.Called(ctx, titleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]float64), args.Error(1)
}

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	args := m.Called(ctx, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, reviewID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}
