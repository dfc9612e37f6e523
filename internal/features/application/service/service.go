package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"leadtrack-miniapp/internal/common/collection"
	"leadtrack-miniapp/internal/features/application/models"
	"leadtrack-miniapp/internal/features/application/repository"
)

// Service управляет списком заявок: постраничный store плюс
// структурированный фильтр, применяемый ко всем последующим страницам.
type Service struct {
	repo    repository.ApplicationRepository
	store   *collection.Store[models.Application]
	backend *storeBackend
	log     zerolog.Logger
}

func NewService(repo repository.ApplicationRepository, pageSize int, log zerolog.Logger) *Service {
	backend := &storeBackend{repo: repo}
	s := &Service{
		repo:    repo,
		backend: backend,
		log:     log.With().Str("component", "applications").Logger(),
	}
	s.store = collection.New(collection.Config[models.Application]{
		Backend:  backend,
		ID:       func(a models.Application) string { return a.ID },
		PageSize: pageSize,
		Log:      log,
	})
	return s
}

func (s *Service) Store() *collection.Store[models.Application] {
	return s.store
}

func (s *Service) SetOwner(telegramID int64) {
	s.store.SetOwner(telegramID)
}

// SetFilter применяет фильтр и перезагружает список с первой страницы.
func (s *Service) SetFilter(ctx context.Context, f models.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.backend.setFilter(f)
	return s.store.Load(ctx, true)
}

// Filter возвращает текущий фильтр.
func (s *Service) Filter() models.Filter {
	return s.backend.filterCopy()
}

// Add создаёт заявку; статус по умолчанию — registered.
func (s *Service) Add(ctx context.Context, draft models.Application) (models.Application, error) {
	if draft.FullName == "" || draft.Phone == "" {
		return models.Application{}, errors.New("full name and phone are required")
	}
	if draft.SourceID == "" {
		return models.Application{}, errors.New("source is required")
	}
	if draft.Status == "" {
		draft.Status = models.StatusRegistered
	}
	if !draft.Status.Valid() {
		return models.Application{}, errors.New("unknown application status")
	}
	if draft.Date == "" {
		draft.Date = time.Now().UTC().Format("2006-01-02")
	}
	return s.store.Add(ctx, draft)
}

// SetStatus переводит заявку в новую стадию.
func (s *Service) SetStatus(ctx context.Context, id string, status models.Status) (models.Application, error) {
	if !status.Valid() {
		return models.Application{}, errors.New("unknown application status")
	}
	patch := map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	return s.store.Update(ctx, id, patch)
}

// SetComment сохраняет комментарий к заявке.
func (s *Service) SetComment(ctx context.Context, id, comment string) (models.Application, error) {
	patch := map[string]any{
		"comment":    comment,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	return s.store.Update(ctx, id, patch)
}

// Delete мягко удаляет заявку и убирает её из локального списка.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

type storeBackend struct {
	repo repository.ApplicationRepository

	mu     sync.Mutex
	filter models.Filter
}

func (b *storeBackend) setFilter(f models.Filter) {
	b.mu.Lock()
	b.filter = f
	b.mu.Unlock()
}

func (b *storeBackend) filterCopy() models.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

func (b *storeBackend) FetchPage(ctx context.Context, ownerID int64, page, size int) ([]models.Application, error) {
	return b.repo.ListPage(ctx, ownerID, b.filterCopy(), page, size)
}

func (b *storeBackend) Insert(ctx context.Context, ownerID int64, draft models.Application) (models.Application, error) {
	return b.repo.Create(ctx, models.NewApplicationInsert{
		TelegramID: ownerID,
		FullName:   draft.FullName,
		Phone:      draft.Phone,
		Email:      draft.Email,
		Date:       draft.Date,
		Status:     draft.Status,
		SourceID:   draft.SourceID,
		SourceName: draft.SourceName,
		Comment:    draft.Comment,
	})
}

func (b *storeBackend) Update(ctx context.Context, id string, patch any) (models.Application, error) {
	return b.repo.Update(ctx, id, patch)
}

func (b *storeBackend) Delete(ctx context.Context, id string) error {
	return b.repo.SoftDelete(ctx, id)
}
