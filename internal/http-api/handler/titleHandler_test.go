package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
)

// MockTitleService mocks the TitleService interface
type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]service.TitleInfo, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.TitleInfo), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*service.TitleInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TitleInfo), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, caller permissions.Caller, in service.CreateTitleInput) (*service.TitleInfo, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TitleInfo), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, caller permissions.Caller, id int64, in service.UpdateTitleInput) (*service.TitleInfo, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TitleInfo), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, caller permissions.Caller, id int64) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func setupTitleRouter(authService service.AuthService, titleService service.TitleService) *gin.Engine {
	router := setupRouter()
	titles := router.Group("/titles", middleware.Authenticate(authService))
	NewTitleHandler(titleService).RegisterRoutes(titles)
	return router
}

func TestListTitles_FiltersFromQuery(t *testing.T) {
	mockTitleService := new(MockTitleService)
	router := setupTitleRouter(new(MockAuthService), mockTitleService)

	wantFilter := repository.TitleFilter{
		CategorySlug: "books",
		GenreSlug:    "sci-fi",
		Name:         "dune",
		Year:         1965,
	}
	mockTitleService.On("List", mock.Anything, wantFilter, 1, 20).
		Return([]service.TitleInfo{}, int64(0), nil)

	req, _ := http.NewRequest("GET", "/titles?category=books&genre=sci-fi&name=dune&year=1965", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockTitleService.AssertExpectations(t)
}

func TestGetTitle_RatingIsNullWithoutReviews(t *testing.T) {
	mockTitleService := new(MockTitleService)
	router := setupTitleRouter(new(MockAuthService), mockTitleService)

	info := &service.TitleInfo{Title: models.Title{ID: 1, Name: "Dune", Year: 1965}}
	mockTitleService.On("Get", mock.Anything, int64(1)).Return(info, nil)

	req, _ := http.NewRequest("GET", "/titles/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	rating, present := body["rating"]
	assert.True(t, present, "rating field must always be emitted")
	assert.Nil(t, rating)
}

func TestGetTitle_RatingFromReviews(t *testing.T) {
	mockTitleService := new(MockTitleService)
	router := setupTitleRouter(new(MockAuthService), mockTitleService)

	avg := 8.5
	info := &service.TitleInfo{Title: models.Title{ID: 1, Name: "Dune", Year: 1965}, Rating: &avg}
	mockTitleService.On("Get", mock.Anything, int64(1)).Return(info, nil)

	req, _ := http.NewRequest("GET", "/titles/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Equal(t, 8.5, body["rating"])
}

func TestCreateTitle_ForbiddenForPlainUser(t *testing.T) {
	mockAuthService := new(MockAuthService)
	mockTitleService := new(MockTitleService)
	router := setupTitleRouter(mockAuthService, mockTitleService)

	claims := &service.Claims{UserID: "u1", Username: "alice", Role: "user"}
	mockAuthService.On("ValidateToken", "valid-token").Return(claims, nil)
	mockTitleService.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, service.ErrForbidden)

	body, _ := json.Marshal(map[string]any{"name": "Dune", "year": 1965})
	req, _ := http.NewRequest("POST", "/titles", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
