package dto

// SignUpRequest for POST /api/v1/auth/signup
type SignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// SignUpResponse echoes the registered pair back to the caller.
type SignUpResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest for POST /api/v1/auth/token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
