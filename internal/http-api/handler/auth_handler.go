package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the signup and token-exchange endpoints.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.SignUp)
	rg.POST("/token", h.Token)
}

// SignUp registers a user (or re-registers an existing one) and mails a
// confirmation code.
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.SignUp(c.Request.Context(), req.Username, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignUpResponse{Username: req.Username, Email: req.Email})
}

// Token exchanges a confirmation code for an access token.
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
