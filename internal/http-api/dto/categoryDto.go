package dto

import "reviewhub/internal/http-api/models"

type CreateCategoryDTO struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type CategoryResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func CategoryFromModel(c models.Category) CategoryResponse {
	return CategoryResponse{Slug: c.Slug, Name: c.Name}
}
