package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadtrack-miniapp/internal/common/collection"
	"leadtrack-miniapp/internal/features/lesson/models"
)

type fakeLessonRepo struct {
	lessons  []models.Lesson
	progress map[string]models.UserLesson // key: user/lesson
	upserts  int
}

func newFakeLessonRepo(n int) *fakeLessonRepo {
	repo := &fakeLessonRepo{progress: map[string]models.UserLesson{}}
	for i := 0; i < n; i++ {
		repo.lessons = append(repo.lessons, models.Lesson{
			ID:         fmt.Sprintf("l%d", i+1),
			Title:      fmt.Sprintf("Урок %d", i+1),
			OrderIndex: i,
		})
	}
	return repo
}

func key(owner int64, lessonID string) string {
	return fmt.Sprintf("%d/%s", owner, lessonID)
}

func (r *fakeLessonRepo) ListPage(_ context.Context, page, size int) ([]models.Lesson, error) {
	from := page * size
	if from >= len(r.lessons) {
		return []models.Lesson{}, nil
	}
	to := from + size
	if to > len(r.lessons) {
		to = len(r.lessons)
	}
	return r.lessons[from:to], nil
}

func (r *fakeLessonRepo) ListProgress(_ context.Context, ownerID int64) ([]models.UserLesson, error) {
	var rows []models.UserLesson
	for _, row := range r.progress {
		if row.TelegramID == ownerID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *fakeLessonRepo) UpsertProgress(_ context.Context, ownerID int64, lessonID string, completed bool) (models.UserLesson, error) {
	r.upserts++
	k := key(ownerID, lessonID)
	row, ok := r.progress[k]
	if !ok {
		// Новая строка получает серверный id
		row = models.UserLesson{
			ID:         fmt.Sprintf("p%d", len(r.progress)+1),
			TelegramID: ownerID,
			LessonID:   lessonID,
		}
	}
	row.Completed = completed
	if completed {
		now := time.Now().UTC()
		row.CompletedAt = &now
	}
	r.progress[k] = row
	return row, nil
}

func newTestService(repo *fakeLessonRepo) *Service {
	return NewService(repo, 20, zerolog.Nop())
}

func TestLessonsLoadWithoutOwner(t *testing.T) {
	service := newTestService(newFakeLessonRepo(3))

	// Уроки глобальные: загрузка не требует владельца
	require.NoError(t, service.Store().Load(context.Background(), true))
	assert.Len(t, service.Store().Snapshot().Items, 3)
}

func TestLessonsOrderPreserved(t *testing.T) {
	service := newTestService(newFakeLessonRepo(5))
	require.NoError(t, service.Store().Load(context.Background(), true))

	lessons := service.Lessons()
	require.Len(t, lessons, 5)
	for i, lesson := range lessons {
		assert.Equal(t, i, lesson.OrderIndex)
	}
}

func TestMarkCompletedUpsert(t *testing.T) {
	repo := newFakeLessonRepo(2)
	service := newTestService(repo)
	service.SetOwner(42)
	ctx := context.Background()

	first, err := service.MarkCompleted(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)

	// Повторная отметка обновляет ту же строку, а не создаёт вторую
	second, err := service.MarkCompleted(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.progress, 1)
	assert.Equal(t, 2, repo.upserts)
}

func TestMarkCompletedRequiresOwner(t *testing.T) {
	service := newTestService(newFakeLessonRepo(1))

	_, err := service.MarkCompleted(context.Background(), "l1")
	assert.ErrorIs(t, err, collection.ErrOwnerRequired)
}

func TestProgressMerge(t *testing.T) {
	repo := newFakeLessonRepo(3)
	service := newTestService(repo)
	service.SetOwner(42)
	ctx := context.Background()

	require.NoError(t, service.Store().Load(ctx, true))
	_, err := service.MarkCompleted(ctx, "l2")
	require.NoError(t, err)

	lessons := service.Lessons()
	require.Len(t, lessons, 3)
	assert.False(t, lessons[0].Completed)
	assert.True(t, lessons[1].Completed)
	assert.False(t, lessons[2].Completed)
}

func TestRefreshProgress(t *testing.T) {
	repo := newFakeLessonRepo(2)
	_, err := repo.UpsertProgress(context.Background(), 42, "l1", true)
	require.NoError(t, err)

	service := newTestService(repo)
	service.SetOwner(42)
	ctx := context.Background()

	require.NoError(t, service.Store().Load(ctx, true))
	require.NoError(t, service.RefreshProgress(ctx))

	lessons := service.Lessons()
	assert.True(t, lessons[0].Completed)
	assert.False(t, lessons[1].Completed)
}
