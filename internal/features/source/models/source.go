package models

import "time"

// Status — статус модерации источника.
type Status string

const (
	StatusActive     Status = "active"
	StatusModeration Status = "moderation"
	StatusBlocked    Status = "blocked"
)

// DefaultSourceName — имя источника, создаваемого автоматически вместе с
// пользователем при первом bootstrap.
const DefaultSourceName = "Отклики компании"

// Source — канал происхождения заявок, принадлежит пользователю. Ровно один
// источник пользователя помечен is_default.
type Source struct {
	ID          string  `json:"id"`
	TelegramID  int64   `json:"user_id"`
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"is_default"`
	Deleted     bool    `json:"deleted"`
	// Денормализованный счётчик заявок, поддерживается на стороне хранилища
	ApplicationsCount int `json:"applications_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSourceInsert — данные создания источника; id назначает сервер.
type NewSourceInsert struct {
	TelegramID  int64   `json:"user_id"`
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	IsDefault   bool    `json:"is_default"`
}

// DefaultSourceInsert возвращает заготовку источника по умолчанию.
func DefaultSourceInsert(telegramID int64) NewSourceInsert {
	return NewSourceInsert{
		TelegramID: telegramID,
		Name:       DefaultSourceName,
		Status:     StatusActive,
		IsDefault:  true,
	}
}
