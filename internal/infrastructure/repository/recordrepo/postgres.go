package recordrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/database/entities"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// PostgresStore persists prompt, image and chat records through gorm.
type PostgresStore struct {
	db *gorm.DB
}

var (
	_ prompt.Repository = (*PostgresStore)(nil)
	_ image.Repository  = (*PostgresStore)(nil)
	_ chat.Repository   = (*PostgresStore)(nil)
)

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreatePrompt(ctx context.Context, record *prompt.Record) error {
	entity := promptToEntity(record)
	if err := s.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create prompt record", err, "4c1e7a92-0d5b-4f63-a8e1-9b2d6c0f3a57")
	}
	return nil
}

func (s *PostgresStore) GetPrompt(ctx context.Context, id string) (*prompt.Record, error) {
	var entity entities.PromptRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"prompt record not found", err, "8f2a4d61-3b7c-4e90-b5d2-1a6e9c0f7b38")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get prompt record", err, "a3d9c5e7-1f08-4b62-9e4a-7c2b0d8f6e15")
	}
	return promptFromEntity(entity), nil
}

func (s *PostgresStore) CreateImage(ctx context.Context, record *image.Record) error {
	entity := imageToEntity(record)
	if err := s.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create image record", err, "d6b0e3f8-7a2c-4159-8d4e-0f3a9c1b5e62")
	}
	return nil
}

func (s *PostgresStore) ListImages(ctx context.Context, filter image.Filter) ([]*image.Record, error) {
	query := s.db.WithContext(ctx).Model(&entities.ImageRecord{})
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	if filter.HasError != nil {
		query = query.Where("has_error = ?", *filter.HasError)
	}

	var rows []entities.ImageRecord
	if err := query.Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list image records", err, "17e4b9c2-5d3a-4f86-a0e1-c8b2d6f9a043")
	}

	out := make([]*image.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, imageFromEntity(row))
	}
	return out, nil
}

func (s *PostgresStore) CreateChat(ctx context.Context, record *chat.Record) error {
	entity := chatToEntity(record)
	if err := s.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create chat record", err, "b9f1d4a6-2e7c-4083-9c5b-3d0a8e6f1c29")
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
