package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"
)

type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// UpdateUserInput carries partial updates; nil means "leave unchanged".
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

type UserService interface {
	List(ctx context.Context, caller permissions.Caller, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, caller permissions.Caller, in CreateUserInput) (*models.User, error)
	GetByUsername(ctx context.Context, caller permissions.Caller, username string) (*models.User, error)
	UpdateByUsername(ctx context.Context, caller permissions.Caller, username string, in UpdateUserInput) (*models.User, error)
	DeleteByUsername(ctx context.Context, caller permissions.Caller, username string) error
	Me(ctx context.Context, caller permissions.Caller) (*models.User, error)
	UpdateMe(ctx context.Context, caller permissions.Caller, in UpdateUserInput) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	limits   validation.Limits
}

func NewUserService(userRepo repository.UserRepository, limits validation.Limits) UserService {
	return &userService{userRepo: userRepo, limits: limits}
}

func (s *userService) List(ctx context.Context, caller permissions.Caller, search string, page, pageSize int) ([]models.User, int64, error) {
	if err := authorize(permissions.ResourceUser, permissions.ActionList, caller, ""); err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(ctx, search, page, pageSize)
}

func (s *userService) Create(ctx context.Context, caller permissions.Caller, in CreateUserInput) (*models.User, error) {
	if err := authorize(permissions.ResourceUser, permissions.ActionCreate, caller, ""); err != nil {
		return nil, err
	}
	if err := s.limits.Username(in.Username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.limits.Email(in.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	role := in.Role
	if role == "" {
		role = string(permissions.RoleUser)
	}
	if _, err := permissions.ParseRole(role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: username or email already in use", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, caller permissions.Caller, username string) (*models.User, error) {
	if err := authorize(permissions.ResourceUser, permissions.ActionRetrieve, caller, ""); err != nil {
		return nil, err
	}
	return s.findUser(ctx, username)
}

func (s *userService) UpdateByUsername(ctx context.Context, caller permissions.Caller, username string, in UpdateUserInput) (*models.User, error) {
	if err := authorize(permissions.ResourceUser, permissions.ActionUpdate, caller, ""); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, user, in, true)
}

func (s *userService) DeleteByUsername(ctx context.Context, caller permissions.Caller, username string) error {
	if err := authorize(permissions.ResourceUser, permissions.ActionDelete, caller, ""); err != nil {
		return err
	}
	if err := s.userRepo.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return err
	}
	return nil
}

func (s *userService) Me(ctx context.Context, caller permissions.Caller) (*models.User, error) {
	if caller.Anonymous() {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// UpdateMe applies a partial self-update. The role field is dropped unless
// the caller is an admin, so no one can escalate their own account.
func (s *userService) UpdateMe(ctx context.Context, caller permissions.Caller, in UpdateUserInput) (*models.User, error) {
	user, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, user, in, caller.Role.IsAdmin())
}

func (s *userService) applyUpdate(ctx context.Context, user *models.User, in UpdateUserInput, allowRole bool) (*models.User, error) {
	if in.Username != nil {
		if err := s.limits.Username(*in.Username); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		if err := s.limits.Email(*in.Email); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil && allowRole {
		if _, err := permissions.ParseRole(*in.Role); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.Role = *in.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: username or email already in use", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, err
	}
	return user, nil
}
