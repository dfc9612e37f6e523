package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"leadtrack-miniapp/internal/common/collection"
	"leadtrack-miniapp/internal/features/lesson/models"
	"leadtrack-miniapp/internal/features/lesson/repository"
)

var errReadOnly = errors.New("lessons are read-only")

// Service отдаёт уроки постранично (по возрастанию order_index) и накладывает
// на них прогресс текущего пользователя.
type Service struct {
	repo  repository.LessonRepository
	store *collection.Store[models.Lesson]
	log   zerolog.Logger

	mu       sync.Mutex
	ownerID  int64
	progress map[string]models.UserLesson // lesson_id -> progress
}

func NewService(repo repository.LessonRepository, pageSize int, log zerolog.Logger) *Service {
	s := &Service{
		repo:     repo,
		log:      log.With().Str("component", "lessons").Logger(),
		progress: map[string]models.UserLesson{},
	}
	s.store = collection.New(collection.Config[models.Lesson]{
		Backend:  &storeBackend{repo: repo},
		ID:       func(l models.Lesson) string { return l.ID },
		PageSize: pageSize,
		// Уроки глобальные, владелец нужен только для прогресса
		OwnerOptional: true,
		Log:           log,
	})
	return s
}

func (s *Service) Store() *collection.Store[models.Lesson] {
	return s.store
}

// SetOwner привязывает прогресс к пользователю после bootstrap.
func (s *Service) SetOwner(telegramID int64) {
	s.mu.Lock()
	s.ownerID = telegramID
	s.progress = map[string]models.UserLesson{}
	s.mu.Unlock()
}

// RefreshProgress перечитывает строки прогресса пользователя.
func (s *Service) RefreshProgress(ctx context.Context) error {
	s.mu.Lock()
	owner := s.ownerID
	s.mu.Unlock()
	if owner == 0 {
		return nil
	}

	rows, err := s.repo.ListProgress(ctx, owner)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.progress = make(map[string]models.UserLesson, len(rows))
	for _, row := range rows {
		s.progress[row.LessonID] = row
	}
	s.mu.Unlock()
	return nil
}

// MarkCompleted отмечает урок пройденным. Повторный вызов обновляет ту же
// строку прогресса, а не создаёт вторую.
func (s *Service) MarkCompleted(ctx context.Context, lessonID string) (models.UserLesson, error) {
	s.mu.Lock()
	owner := s.ownerID
	s.mu.Unlock()
	if owner == 0 {
		return models.UserLesson{}, collection.ErrOwnerRequired
	}

	row, err := s.repo.UpsertProgress(ctx, owner, lessonID, true)
	if err != nil {
		return models.UserLesson{}, err
	}

	s.mu.Lock()
	s.progress[lessonID] = row
	s.mu.Unlock()
	return row, nil
}

// Lessons возвращает загруженные уроки с наложенным прогрессом.
func (s *Service) Lessons() []models.LessonWithProgress {
	snap := s.store.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]models.LessonWithProgress, 0, len(snap.Items))
	for _, lesson := range snap.Items {
		item := models.LessonWithProgress{Lesson: lesson}
		if row, ok := s.progress[lesson.ID]; ok {
			item.Completed = row.Completed
			item.CompletedAt = row.CompletedAt
		}
		merged = append(merged, item)
	}
	return merged
}

type storeBackend struct {
	repo repository.LessonRepository
}

func (b *storeBackend) FetchPage(ctx context.Context, _ int64, page, size int) ([]models.Lesson, error) {
	return b.repo.ListPage(ctx, page, size)
}

func (b *storeBackend) Insert(context.Context, int64, models.Lesson) (models.Lesson, error) {
	return models.Lesson{}, errReadOnly
}

func (b *storeBackend) Update(context.Context, string, any) (models.Lesson, error) {
	return models.Lesson{}, errReadOnly
}

func (b *storeBackend) Delete(context.Context, string) error {
	return errReadOnly
}
