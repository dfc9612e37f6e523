package supabase

import (
	"errors"
	"fmt"
)

// ErrNoRows сигнализирует, что точечный запрос не нашёл ни одной строки.
// PostgREST сообщает об этом кодом PGRST116; все остальные ошибки считаются
// сбоями запроса и до этой ветки не доходят.
var ErrNoRows = errors.New("no rows found")

const codeNoRows = "PGRST116"

// APIError представляет тело ошибки PostgREST.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (code %s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.Status)
}

// Unwrap позволяет отличать "не найдено" через errors.Is(err, ErrNoRows).
func (e *APIError) Unwrap() error {
	if e.Code == codeNoRows {
		return ErrNoRows
	}
	return nil
}

// IsNotFound reports whether err is the distinguished zero-rows outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoRows)
}
