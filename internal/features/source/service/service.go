package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"leadtrack-miniapp/internal/common/collection"
	"leadtrack-miniapp/internal/features/source/models"
	"leadtrack-miniapp/internal/features/source/repository"
)

// Service управляет списком источников пользователя поверх постраничного
// store.
type Service struct {
	repo  repository.SourceRepository
	store *collection.Store[models.Source]
	log   zerolog.Logger
}

func NewService(repo repository.SourceRepository, pageSize int, log zerolog.Logger) *Service {
	s := &Service{
		repo: repo,
		log:  log.With().Str("component", "sources").Logger(),
	}
	s.store = collection.New(collection.Config[models.Source]{
		Backend:  &storeBackend{repo: repo},
		ID:       func(src models.Source) string { return src.ID },
		PageSize: pageSize,
		Log:      log,
	})
	return s
}

// Store отдаёт постраничный store для потребителей списка.
func (s *Service) Store() *collection.Store[models.Source] {
	return s.store
}

// SetOwner привязывает список к пользователю после bootstrap.
func (s *Service) SetOwner(telegramID int64) {
	s.store.SetOwner(telegramID)
}

// Add создаёт источник; новые источники уходят на модерацию.
func (s *Service) Add(ctx context.Context, draft models.Source) (models.Source, error) {
	if draft.Name == "" {
		return models.Source{}, errors.New("source name is required")
	}
	if draft.Status == "" {
		draft.Status = models.StatusModeration
	}
	return s.store.Add(ctx, draft)
}

// Rename обновляет имя источника.
func (s *Service) Rename(ctx context.Context, id, name string) (models.Source, error) {
	if name == "" {
		return models.Source{}, errors.New("source name is required")
	}
	patch := map[string]any{
		"name":       name,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	return s.store.Update(ctx, id, patch)
}

// Delete удаляет источник. Источник по умолчанию удалить нельзя.
func (s *Service) Delete(ctx context.Context, id string) error {
	for _, src := range s.store.Snapshot().Items {
		if src.ID == id && src.IsDefault {
			return fmt.Errorf("default source cannot be deleted")
		}
	}
	return s.store.Delete(ctx, id)
}

type storeBackend struct {
	repo repository.SourceRepository
}

func (b *storeBackend) FetchPage(ctx context.Context, ownerID int64, page, size int) ([]models.Source, error) {
	return b.repo.ListPage(ctx, ownerID, page, size)
}

func (b *storeBackend) Insert(ctx context.Context, ownerID int64, draft models.Source) (models.Source, error) {
	return b.repo.Create(ctx, models.NewSourceInsert{
		TelegramID:  ownerID,
		Name:        draft.Name,
		Status:      draft.Status,
		URL:         draft.URL,
		Description: draft.Description,
		IsDefault:   draft.IsDefault,
	})
}

func (b *storeBackend) Update(ctx context.Context, id string, patch any) (models.Source, error) {
	return b.repo.Update(ctx, id, patch)
}

func (b *storeBackend) Delete(ctx context.Context, id string) error {
	return b.repo.Delete(ctx, id)
}
