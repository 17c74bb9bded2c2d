package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateCommentDTO for POST on a review's comments
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentDTO for PATCH on a single comment
type UpdateCommentDTO struct {
	Text *string `json:"text,omitempty"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

func CommentFromModel(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Author:  c.Author.Username,
		Text:    c.Text,
		PubDate: c.PubDate,
	}
}
