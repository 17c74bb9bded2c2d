package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes wires the admin user collection plus the self endpoints.
// The static /me routes take priority over the :username parameter.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/me", h.Me)
	rg.PATCH("/me", h.UpdateMe)
	rg.GET("/:username", h.Get)
	rg.PATCH("/:username", h.Update)
	rg.DELETE("/:username", h.Delete)
}

// List returns users, filterable by username substring.
// GET /api/v1/users?search=&page=&page_size=
func (h *UserHandler) List(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	page, pageSize := pagination(c)

	users, total, err := h.userService.List(c.Request.Context(), caller, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.UserFromModel(u))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, int(total), page, pageSize))
}

// Create adds a user with an admin-chosen role.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	var req dto.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), caller, service.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserFromModel(*user))
}

// Get retrieves a user by username.
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	user, err := h.userService.GetByUsername(c.Request.Context(), caller, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// Update applies a partial update to a user.
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateByUsername(c.Request.Context(), caller, c.Param("username"), service.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// Delete removes a user.
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	if err := h.userService.DeleteByUsername(c.Request.Context(), caller, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own profile.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	user, err := h.userService.Me(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// UpdateMe applies a partial self-update; the role field is ignored for
// non-admin callers.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), caller, service.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}
