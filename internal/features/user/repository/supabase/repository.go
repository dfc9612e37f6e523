package supabase

import (
	"context"
	"fmt"

	"leadtrack-miniapp/internal/features/user/models"
	"leadtrack-miniapp/internal/features/user/repository"
	"leadtrack-miniapp/internal/platform/supabase"
)

const usersTable = "users"

type supabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(client *supabase.Client) repository.UserRepository {
	return &supabaseRepository{client: client}
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *supabaseRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	q := supabase.NewQuery().Eq("user_id", telegramID)
	if err := r.client.SelectSingle(ctx, usersTable, q, &user); err != nil {
		if supabase.IsNotFound(err) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create создает нового пользователя и возвращает серверную строку
func (r *supabaseRepository) Create(ctx context.Context, insert models.NewUserInsert) (*models.User, error) {
	var user models.User
	if err := r.client.Insert(ctx, usersTable, insert, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Update обновляет профиль пользователя по id строки
func (r *supabaseRepository) Update(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	var user models.User
	q := supabase.NewQuery().Eq("id", id)
	if err := r.client.Update(ctx, usersTable, q, patch, &user); err != nil {
		if supabase.IsNotFound(err) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}
