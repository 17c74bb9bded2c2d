package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"
)

func newTestAuthService(userRepo *MockUserRepository, codeRepo *MockCodeRepository, notifier *MockNotifier) AuthService {
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		AccessTokenTTL:      15 * time.Minute,
		ConfirmationCodeTTL: 10 * time.Minute,
	}
	return NewAuthService(userRepo, codeRepo, notifier, validation.DefaultLimits(), cfg)
}

func TestSignUp_NewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, codeRepo, notifier)

	userRepo.On("FindByUsernameAndEmail", mock.Anything, "alice", "alice@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	codeRepo.On("Store", mock.Anything, "alice", mock.AnythingOfType("string"), 10*time.Minute).Return(nil)
	notifier.On("Send", "alice@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	err := svc.SignUp(context.Background(), "alice", "alice@example.com")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
	codeRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)

	created := userRepo.Calls[3].Arguments.Get(1).(*models.User)
	assert.Equal(t, "user", created.Role)
}

func TestSignUp_ExistingPairReissuesCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, codeRepo, notifier)

	existing := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: "user"}
	userRepo.On("FindByUsernameAndEmail", mock.Anything, "alice", "alice@example.com").Return(existing, nil)
	codeRepo.On("Store", mock.Anything, "alice", mock.AnythingOfType("string"), mock.Anything).Return(nil)
	notifier.On("Send", "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	err := svc.SignUp(context.Background(), "alice", "alice@example.com")

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	codeRepo.AssertExpectations(t)
}

func TestSignUp_UsernameTakenByAnotherEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, codeRepo, notifier)

	userRepo.On("FindByUsernameAndEmail", mock.Anything, "alice", "new@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByUsername", mock.Anything, "alice").
		Return(&models.User{ID: "u1", Username: "alice"}, nil)

	err := svc.SignUp(context.Background(), "alice", "new@example.com")

	assert.ErrorIs(t, err, ErrConflict)
	codeRepo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUp_EmailTakenByAnotherUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, codeRepo, notifier)

	userRepo.On("FindByUsernameAndEmail", mock.Anything, "bob", "alice@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByUsername", mock.Anything, "bob").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: "u1", Email: "alice@example.com"}, nil)

	err := svc.SignUp(context.Background(), "bob", "alice@example.com")

	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignUp_ReservedUsername(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), new(MockNotifier))

	err := svc.SignUp(context.Background(), "me", "me@example.com")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignUp_InvalidUsernameCharacters(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockCodeRepository), new(MockNotifier))

	err := svc.SignUp(context.Background(), "bad name!", "bad@example.com")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignUp_MailFailureStillSucceeds(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	notifier := new(MockNotifier)
	svc := newTestAuthService(userRepo, codeRepo, notifier)

	existing := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	userRepo.On("FindByUsernameAndEmail", mock.Anything, "alice", "alice@example.com").Return(existing, nil)
	codeRepo.On("Store", mock.Anything, "alice", mock.Anything, mock.Anything).Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	err := svc.SignUp(context.Background(), "alice", "alice@example.com")

	// delivery failure is logged, the code stays valid
	assert.NoError(t, err)
}

func TestIssueToken_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	svc := newTestAuthService(userRepo, codeRepo, new(MockNotifier))

	code := "a3f1c2d4e5b6a7f8a3f1c2d4e5b6a7f8"
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	assert.NoError(t, err)

	user := &models.User{ID: "u1", Username: "alice", Role: "user"}
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	codeRepo.On("Get", mock.Anything, "alice").Return(string(hash), nil)

	token, err := svc.IssueToken(context.Background(), "alice", code)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestIssueToken_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockCodeRepository), new(MockNotifier))

	userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.IssueToken(context.Background(), "ghost", "whatever")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueToken_WrongCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	svc := newTestAuthService(userRepo, codeRepo, new(MockNotifier))

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-code"), bcrypt.MinCost)
	assert.NoError(t, err)

	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&models.User{ID: "u1", Username: "alice"}, nil)
	codeRepo.On("Get", mock.Anything, "alice").Return(string(hash), nil)

	_, err = svc.IssueToken(context.Background(), "alice", "not-the-code")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueToken_NoOutstandingCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	svc := newTestAuthService(userRepo, codeRepo, new(MockNotifier))

	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&models.User{ID: "u1", Username: "alice"}, nil)
	codeRepo.On("Get", mock.Anything, "alice").Return("", repository.ErrCodeNotFound)

	_, err := svc.IssueToken(context.Background(), "alice", "expired-code")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	userRepo := new(MockUserRepository)
	codeRepo := new(MockCodeRepository)
	svc := newTestAuthService(userRepo, codeRepo, new(MockNotifier))

	code := "deadbeefdeadbeefdeadbeefdeadbeef"
	hash, _ := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&models.User{ID: "u1", Username: "alice"}, nil)
	codeRepo.On("Get", mock.Anything, "alice").Return(string(hash), nil)

	token, err := svc.IssueToken(context.Background(), "alice", code)
	assert.NoError(t, err)

	other := NewAuthService(userRepo, codeRepo, new(MockNotifier), validation.DefaultLimits(), &config.Config{
		JWTSecret:      "a-different-secret",
		AccessTokenTTL: time.Minute,
	})

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
