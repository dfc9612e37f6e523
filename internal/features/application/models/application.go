package models

import (
	"fmt"
	"time"
)

// Status — стадия работы с заявкой.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusInProgress Status = "in_progress"
	StatusContacted  Status = "contacted"
	StatusRejected   Status = "rejected"
)

// Valid reports whether the status is one of the known stages.
func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusInProgress, StatusContacted, StatusRejected:
		return true
	}
	return false
}

// Application — заявка (лид), привязанная к источнику своего владельца.
type Application struct {
	ID         string  `json:"id"`
	TelegramID int64   `json:"user_id"`
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email"`
	Date       string  `json:"date"`
	Status     Status  `json:"status"`
	SourceID   string  `json:"source_id"`
	// Денормализованное имя источника для отображения в списке
	SourceName string  `json:"source_name"`
	Comment    *string `json:"comment"`
	Deleted    bool    `json:"deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewApplicationInsert — данные создания заявки.
type NewApplicationInsert struct {
	TelegramID int64   `json:"user_id"`
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email,omitempty"`
	Date       string  `json:"date"`
	Status     Status  `json:"status"`
	SourceID   string  `json:"source_id"`
	SourceName string  `json:"source_name,omitempty"`
	Comment    *string `json:"comment,omitempty"`
}

// Filter — структурированные параметры выборки заявок вместо свободного
// набора условий: каждое поле явно и проверяется перед запросом.
type Filter struct {
	Status   *Status
	SourceID *string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Validate проверяет согласованность фильтра.
func (f Filter) Validate() error {
	if f.Status != nil && !f.Status.Valid() {
		return fmt.Errorf("unknown application status: %s", *f.Status)
	}
	if f.SourceID != nil && *f.SourceID == "" {
		return fmt.Errorf("source id filter is empty")
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return fmt.Errorf("date range is inverted")
	}
	return nil
}

// Empty reports whether the filter has no conditions.
func (f Filter) Empty() bool {
	return f.Status == nil && f.SourceID == nil && f.DateFrom == nil && f.DateTo == nil
}
