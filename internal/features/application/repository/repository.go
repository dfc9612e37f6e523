package repository

import (
	"context"
	"errors"

	"leadtrack-miniapp/internal/features/application/models"
)

var ErrApplicationNotFound = errors.New("application not found")

type ApplicationRepository interface {
	// ListPage возвращает страницу не удалённых заявок владельца, новые
	// первыми, с учётом фильтра.
	ListPage(ctx context.Context, ownerID int64, f models.Filter, page, size int) ([]models.Application, error)
	Create(ctx context.Context, insert models.NewApplicationInsert) (models.Application, error)
	Update(ctx context.Context, id string, patch any) (models.Application, error)
	// SoftDelete помечает заявку удалённой, строка остаётся в хранилище.
	SoftDelete(ctx context.Context, id string) error
}
