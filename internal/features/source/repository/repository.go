package repository

import (
	"context"
	"errors"

	"leadtrack-miniapp/internal/features/source/models"
)

var ErrSourceNotFound = errors.New("source not found")

type SourceRepository interface {
	// ListPage возвращает страницу источников владельца, новые первыми.
	ListPage(ctx context.Context, ownerID int64, page, size int) ([]models.Source, error)
	Create(ctx context.Context, insert models.NewSourceInsert) (models.Source, error)
	Update(ctx context.Context, id string, patch any) (models.Source, error)
	Delete(ctx context.Context, id string) error
	// GetDefault находит источник по умолчанию владельца.
	GetDefault(ctx context.Context, ownerID int64) (*models.Source, error)
}
