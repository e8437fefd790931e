package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.PromptRecord{},
		&entities.ImageRecord{},
		&entities.ChatRecord{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied record store migrations")
	return nil
}
