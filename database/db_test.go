package database

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
)

// Needs a real postgres because the behavior under test lives in the FK
// constraints the schema migration emits, not in application code.
func TestConnect_DeleteCascades(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL environment variable is not set")
	}

	db, err := Connect(&config.Config{DatabaseURL: dsn})
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]

	author := &models.User{Username: "cascade_" + suffix, Email: suffix + "@example.com", Role: "user"}
	require.NoError(t, db.Create(author).Error)
	t.Cleanup(func() { db.Delete(author) })

	category := &models.Category{Slug: "cascade-cat-" + suffix, Name: "Cascade Category"}
	require.NoError(t, db.Create(category).Error)

	genre := &models.Genre{Slug: "cascade-genre-" + suffix, Name: "Cascade Genre"}
	require.NoError(t, db.Create(genre).Error)
	t.Cleanup(func() { db.Delete(genre) })

	title := &models.Title{
		Name:       "Cascade Title " + suffix,
		Year:       1990,
		CategoryID: &category.ID,
		Genres:     []models.Genre{*genre},
	}
	require.NoError(t, db.Create(title).Error)

	review := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "holds up", Score: 7}
	require.NoError(t, db.Create(review).Error)

	comment := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "seconded"}
	require.NoError(t, db.Create(comment).Error)

	// deleting the category keeps the title but clears its reference
	require.NoError(t, db.Delete(category).Error)

	var reloaded models.Title
	require.NoError(t, db.First(&reloaded, title.ID).Error)
	assert.Nil(t, reloaded.CategoryID)

	// deleting the title takes its reviews, their comments and the genre
	// links down with it
	require.NoError(t, db.Delete(title).Error)

	var count int64
	db.Model(&models.Review{}).Where("id = ?", review.ID).Count(&count)
	assert.Zero(t, count, "review should be gone with its title")

	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	assert.Zero(t, count, "comment should be gone with its review")

	db.Model(&models.TitleGenre{}).Where("title_id = ?", title.ID).Count(&count)
	assert.Zero(t, count, "genre links should be gone with their title")

	// the genre itself survives its links
	var genreCount int64
	db.Model(&models.Genre{}).Where("id = ?", genre.ID).Count(&genreCount)
	assert.EqualValues(t, 1, genreCount)
}
