package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/pkg/logger"
)

// Connect opens the postgres database and migrates the schema. The unique
// indexes created here (username, email, category/genre slug, title+genre,
// title+author) are what give create operations their atomic
// check-and-insert behavior under concurrent requests.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.SetupJoinTable(&models.Title{}, "Genres", &models.TitleGenre{}); err != nil {
		return nil, fmt.Errorf("failed to set up title_genres join table: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.TitleGenre{},
		&models.Review{},
		&models.Comment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info().Msg("connected to the database")
	return db, nil
}
