// Package collection реализует постраничный клиентский кэш удалённой
// коллекции: загрузка страниц с добавлением в конец списка и мутации,
// которые синхронизируют локальное состояние с подтверждённым серверным.
package collection

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultPageSize совпадает с ITEMS_PER_PAGE исходного приложения.
const DefaultPageSize = 20

// ErrOwnerRequired возвращается мутациями, когда владелец ещё не известен
// (пользователь не прошёл bootstrap).
var ErrOwnerRequired = errors.New("owner id is required")

// Backend — удалённая сторона коллекции. Реализуется репозиторием сущности.
type Backend[T any] interface {
	// FetchPage возвращает страницу page (0-indexed) размера size,
	// отсортированную ключом сортировки сущности.
	FetchPage(ctx context.Context, ownerID int64, page, size int) ([]T, error)
	// Insert создаёт запись с привязкой к владельцу и возвращает серверную
	// строку (с назначенными id и временными метками).
	Insert(ctx context.Context, ownerID int64, draft T) (T, error)
	// Update обновляет запись по id и возвращает серверную строку.
	Update(ctx context.Context, id string, patch any) (T, error)
	// Delete удаляет запись по id (жёстко или мягко — решает сущность).
	Delete(ctx context.Context, id string) error
}

// Config собирает зависимости Store.
type Config[T any] struct {
	Backend  Backend[T]
	ID       func(T) string
	PageSize int
	// OwnerOptional снимает требование владельца (глобальные коллекции,
	// например уроки).
	OwnerOptional bool
	Log           zerolog.Logger
}

// Snapshot — единый согласованный срез состояния store.
type Snapshot[T any] struct {
	Items   []T
	Loading bool
	HasMore bool
	Err     error
}

// Store хранит локально материализованный список одной удалённой коллекции.
// Безопасен для конкурентного использования; load/loadMore сериализованы.
type Store[T any] struct {
	mu       sync.Mutex
	backend  Backend[T]
	id       func(T) string
	pageSize int
	optional bool
	log      zerolog.Logger

	ownerID int64
	items   []T
	page    int
	loading bool
	hasMore bool
	err     error
	// generation растёт при reset/смене владельца; запоздавший результат
	// с другим поколением отбрасывается.
	generation uint64
}

func New[T any](cfg Config[T]) *Store[T] {
	size := cfg.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Store[T]{
		backend:  cfg.Backend,
		id:       cfg.ID,
		pageSize: size,
		optional: cfg.OwnerOptional,
		log:      cfg.Log.With().Str("component", "collection").Logger(),
		hasMore:  true,
	}
}

// SetOwner привязывает store к владельцу и сбрасывает локальное состояние.
func (s *Store[T]) SetOwner(ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == ownerID {
		return
	}
	s.ownerID = ownerID
	s.items = nil
	s.page = 0
	s.hasMore = true
	s.err = nil
	s.generation++
}

// Load загружает текущую страницу. При reset=true список замещается и
// нумерация страниц сбрасывается на 0, при reset=false строки добавляются в
// конец. Без владельца — no-op с пустым списком и без единого удалённого
// вызова. Повторный вызов при незавершённой загрузке игнорируется.
func (s *Store[T]) Load(ctx context.Context, reset bool) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	if s.ownerID == 0 && !s.optional {
		// Нет владельца — пропускаем загрузку
		s.items = []T{}
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	page := s.page
	if reset {
		page = 0
		s.generation++
	}
	s.mu.Unlock()

	return s.fetch(ctx, page, !reset)
}

// LoadMore догружает следующую страницу с добавлением в конец. No-op, когда
// загрузка уже идёт или страниц больше нет.
func (s *Store[T]) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	if s.ownerID == 0 && !s.optional {
		s.mu.Unlock()
		return nil
	}
	page := s.page + 1
	s.mu.Unlock()

	return s.fetch(ctx, page, true)
}

func (s *Store[T]) fetch(ctx context.Context, page int, append_ bool) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	gen := s.generation
	owner := s.ownerID
	s.mu.Unlock()

	rows, err := s.backend.FetchPage(ctx, owner, page, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	// loading снимается на любом исходе, чтобы UI не завис в спиннере
	s.loading = false
	if gen != s.generation {
		// Результат пережил reset — отбрасываем
		return nil
	}
	if err != nil {
		s.err = err
		s.log.Error().Err(err).Int("page", page).Msg("page fetch failed")
		return err
	}
	s.err = nil
	if append_ {
		s.items = append(s.items, rows...)
	} else {
		s.items = rows
	}
	s.page = page
	s.hasMore = len(rows) == s.pageSize
	s.log.Debug().Int("page", page).Int("rows", len(rows)).Bool("has_more", s.hasMore).Msg("page loaded")
	return nil
}

// Add создаёт запись на сервере и при успехе ставит серверную строку в начало
// списка. При ошибке список не меняется, ошибка возвращается вызывающему.
func (s *Store[T]) Add(ctx context.Context, draft T) (T, error) {
	var zero T
	s.mu.Lock()
	owner := s.ownerID
	s.mu.Unlock()
	if owner == 0 && !s.optional {
		return zero, ErrOwnerRequired
	}

	created, err := s.backend.Insert(ctx, owner, draft)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	s.items = append([]T{created}, s.items...)
	s.mu.Unlock()
	return created, nil
}

// Update обновляет запись на сервере и замещает локальный элемент серверной
// строкой.
func (s *Store[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	var zero T
	updated, err := s.backend.Update(ctx, id, patch)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.id(s.items[i]) == id {
			s.items[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// Delete удаляет запись на сервере и убирает локальный элемент.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	filtered := s.items[:0]
	for _, item := range s.items {
		if s.id(item) != id {
			filtered = append(filtered, item)
		}
	}
	s.items = filtered
	s.mu.Unlock()
	return nil
}

// Snapshot возвращает копию текущего состояния.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return Snapshot[T]{
		Items:   items,
		Loading: s.loading,
		HasMore: s.hasMore,
		Err:     s.err,
	}
}
