package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:slug", h.Delete)
}

// List is public; supports name search.
// GET /api/v1/categories?search=
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	list, total, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.CategoryResponse, 0, len(list))
	for _, item := range list {
		resp = append(resp, dto.CategoryFromModel(item))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, int(total), page, pageSize))
}

// Create adds a category (admin only).
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	var req dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.svc.Create(c.Request.Context(), caller, req.Slug, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryFromModel(*category))
}

// Delete removes a category by slug (admin only). Titles in the category
// survive with no category.
// DELETE /api/v1/categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
