package supabase

import (
	"context"
	"fmt"
	"time"

	"leadtrack-miniapp/internal/features/lesson/models"
	"leadtrack-miniapp/internal/features/lesson/repository"
	"leadtrack-miniapp/internal/platform/supabase"
)

const (
	lessonsTable     = "lessons"
	userLessonsTable = "user_lessons"
)

type supabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(client *supabase.Client) repository.LessonRepository {
	return &supabaseRepository{client: client}
}

// ListPage получает страницу уроков в порядке прохождения
func (r *supabaseRepository) ListPage(ctx context.Context, page, size int) ([]models.Lesson, error) {
	from := page * size
	to := from + size - 1

	lessons := []models.Lesson{}
	q := supabase.NewQuery().
		Order("order_index", true).
		Range(from, to)
	if err := r.client.Select(ctx, lessonsTable, q, &lessons); err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// ListProgress получает прогресс пользователя по всем урокам
func (r *supabaseRepository) ListProgress(ctx context.Context, ownerID int64) ([]models.UserLesson, error) {
	progress := []models.UserLesson{}
	q := supabase.NewQuery().Eq("user_id", ownerID)
	if err := r.client.Select(ctx, userLessonsTable, q, &progress); err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}
	return progress, nil
}

// UpsertProgress создает или обновляет прогресс по ключу (user_id, lesson_id)
func (r *supabaseRepository) UpsertProgress(ctx context.Context, ownerID int64, lessonID string, completed bool) (models.UserLesson, error) {
	body := models.ProgressUpsert{
		TelegramID: ownerID,
		LessonID:   lessonID,
		Completed:  completed,
	}
	if completed {
		now := time.Now().UTC().Format(time.RFC3339)
		body.CompletedAt = &now
	}

	var row models.UserLesson
	if err := r.client.Upsert(ctx, userLessonsTable, "user_id,lesson_id", body, &row); err != nil {
		return models.UserLesson{}, fmt.Errorf("failed to upsert lesson progress: %w", err)
	}
	return row, nil
}
