package repository

import (
	"context"
	"errors"

	"leadtrack-miniapp/internal/features/user/models"
)

// ErrUserNotFound — отличимый исход "строки нет", ведёт в ветку создания.
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Create(ctx context.Context, insert models.NewUserInsert) (*models.User, error)
	Update(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
}
