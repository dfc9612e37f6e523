package supabase

import (
	"context"
	"fmt"
	"time"

	"leadtrack-miniapp/internal/features/application/models"
	"leadtrack-miniapp/internal/features/application/repository"
	"leadtrack-miniapp/internal/platform/supabase"
)

const applicationsTable = "applications"

type supabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(client *supabase.Client) repository.ApplicationRepository {
	return &supabaseRepository{client: client}
}

// ListPage получает страницу заявок владельца с учётом фильтра
func (r *supabaseRepository) ListPage(ctx context.Context, ownerID int64, f models.Filter, page, size int) ([]models.Application, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	from := page * size
	to := from + size - 1

	q := supabase.NewQuery().
		Eq("user_id", ownerID).
		Eq("deleted", false).
		Order("created_at", false).
		Range(from, to)
	if f.Status != nil {
		q = q.Eq("status", string(*f.Status))
	}
	if f.SourceID != nil {
		q = q.Eq("source_id", *f.SourceID)
	}
	if f.DateFrom != nil {
		q = q.Gte("date", f.DateFrom.Format("2006-01-02"))
	}
	if f.DateTo != nil {
		q = q.Lte("date", f.DateTo.Format("2006-01-02"))
	}

	applications := []models.Application{}
	if err := r.client.Select(ctx, applicationsTable, q, &applications); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

// Create создает заявку и возвращает серверную строку
func (r *supabaseRepository) Create(ctx context.Context, insert models.NewApplicationInsert) (models.Application, error) {
	var application models.Application
	if err := r.client.Insert(ctx, applicationsTable, insert, &application); err != nil {
		return models.Application{}, fmt.Errorf("failed to create application: %w", err)
	}
	return application, nil
}

// Update обновляет заявку по id
func (r *supabaseRepository) Update(ctx context.Context, id string, patch any) (models.Application, error) {
	var application models.Application
	q := supabase.NewQuery().Eq("id", id)
	if err := r.client.Update(ctx, applicationsTable, q, patch, &application); err != nil {
		if supabase.IsNotFound(err) {
			return models.Application{}, repository.ErrApplicationNotFound
		}
		return models.Application{}, fmt.Errorf("failed to update application: %w", err)
	}
	return application, nil
}

// SoftDelete помечает заявку удалённой
func (r *supabaseRepository) SoftDelete(ctx context.Context, id string) error {
	q := supabase.NewQuery().Eq("id", id)
	patch := map[string]any{
		"deleted":    true,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.client.Update(ctx, applicationsTable, q, patch, nil); err != nil {
		if supabase.IsNotFound(err) {
			return repository.ErrApplicationNotFound
		}
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return nil
}
