package repository

import (
	"context"

	"leadtrack-miniapp/internal/features/lesson/models"
)

type LessonRepository interface {
	// ListPage возвращает страницу уроков по возрастанию order_index.
	ListPage(ctx context.Context, page, size int) ([]models.Lesson, error)
	// ListProgress возвращает все строки прогресса пользователя.
	ListProgress(ctx context.Context, ownerID int64) ([]models.UserLesson, error)
	// UpsertProgress создаёт или обновляет строку прогресса по ключу
	// (user_id, lesson_id).
	UpsertProgress(ctx context.Context, ownerID int64, lessonID string, completed bool) (models.UserLesson, error)
}
