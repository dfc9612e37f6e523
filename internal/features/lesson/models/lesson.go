package models

import "time"

// Lesson — глобальный урок обучения, общий для всех пользователей.
type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Content     string `json:"content"`
	// Порядок показа в списке уроков
	OrderIndex int `json:"order_index"`

	CreatedAt time.Time `json:"created_at"`
}

// UserLesson — прогресс пользователя по уроку; не более одной строки на пару
// (user_id, lesson_id), запись идёт через upsert.
type UserLesson struct {
	ID          string     `json:"id"`
	TelegramID  int64      `json:"user_id"`
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LessonWithProgress — урок с наложенным прогрессом текущего пользователя.
type LessonWithProgress struct {
	Lesson
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ProgressUpsert — тело upsert записи прогресса.
type ProgressUpsert struct {
	TelegramID  int64   `json:"user_id"`
	LessonID    string  `json:"lesson_id"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at"`
}
