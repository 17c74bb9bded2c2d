package dto

import "reviewhub/internal/http-api/models"

type CreateGenreDTO struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type GenreResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func GenreFromModel(g models.Genre) GenreResponse {
	return GenreResponse{Slug: g.Slug, Name: g.Name}
}
