package dto

import "reviewhub/internal/http-api/models"

// CreateUserDTO used by admins for POST /api/v1/users
type CreateUserDTO struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// UpdateUserDTO allows partial updates, also used on /users/me
type UpdateUserDTO struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Role      *string `json:"role,omitempty"`
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func UserFromModel(u models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
