package supabase

import (
	"context"
	"fmt"

	"leadtrack-miniapp/internal/features/source/models"
	"leadtrack-miniapp/internal/features/source/repository"
	"leadtrack-miniapp/internal/platform/supabase"
)

const sourcesTable = "sources"

type supabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(client *supabase.Client) repository.SourceRepository {
	return &supabaseRepository{client: client}
}

// ListPage получает страницу источников, отсортированных по дате создания
func (r *supabaseRepository) ListPage(ctx context.Context, ownerID int64, page, size int) ([]models.Source, error) {
	from := page * size
	to := from + size - 1

	sources := []models.Source{}
	q := supabase.NewQuery().
		Eq("user_id", ownerID).
		Eq("deleted", false).
		Order("created_at", false).
		Range(from, to)
	if err := r.client.Select(ctx, sourcesTable, q, &sources); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// Create создает источник и возвращает серверную строку
func (r *supabaseRepository) Create(ctx context.Context, insert models.NewSourceInsert) (models.Source, error) {
	var source models.Source
	if err := r.client.Insert(ctx, sourcesTable, insert, &source); err != nil {
		return models.Source{}, fmt.Errorf("failed to create source: %w", err)
	}
	return source, nil
}

// Update обновляет источник по id
func (r *supabaseRepository) Update(ctx context.Context, id string, patch any) (models.Source, error) {
	var source models.Source
	q := supabase.NewQuery().Eq("id", id)
	if err := r.client.Update(ctx, sourcesTable, q, patch, &source); err != nil {
		if supabase.IsNotFound(err) {
			return models.Source{}, repository.ErrSourceNotFound
		}
		return models.Source{}, fmt.Errorf("failed to update source: %w", err)
	}
	return source, nil
}

// Delete удаляет источник (жёстко, как в исходном приложении)
func (r *supabaseRepository) Delete(ctx context.Context, id string) error {
	q := supabase.NewQuery().Eq("id", id)
	if err := r.client.Delete(ctx, sourcesTable, q); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return nil
}

// GetDefault находит источник по умолчанию владельца
func (r *supabaseRepository) GetDefault(ctx context.Context, ownerID int64) (*models.Source, error) {
	var source models.Source
	q := supabase.NewQuery().
		Eq("user_id", ownerID).
		Eq("is_default", true)
	if err := r.client.SelectSingle(ctx, sourcesTable, q, &source); err != nil {
		if supabase.IsNotFound(err) {
			return nil, repository.ErrSourceNotFound
		}
		return nil, fmt.Errorf("failed to get default source: %w", err)
	}
	return &source, nil
}
