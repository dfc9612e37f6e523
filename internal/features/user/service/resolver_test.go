package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sourcemodels "leadtrack-miniapp/internal/features/source/models"
	sourcerepo "leadtrack-miniapp/internal/features/source/repository"
	"leadtrack-miniapp/internal/features/user/models"
	"leadtrack-miniapp/internal/features/user/repository"
	"leadtrack-miniapp/internal/platform/telegram"
)

type fakeUserRepo struct {
	users       map[int64]*models.User
	lookupErr   error
	createErr   error
	lookupCalls int
	createCalls int
	nextID      int
	lastPatch   models.ProfilePatch
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.lookupCalls++
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	if user, ok := r.users[telegramID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, insert models.NewUserInsert) (*models.User, error) {
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	user := &models.User{
		ID:         fmt.Sprintf("u%d", r.nextID),
		TelegramID: insert.TelegramID,
		Name:       insert.Name,
		Username:   insert.Username,
		Avatar:     insert.Avatar,
	}
	r.users[insert.TelegramID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	r.lastPatch = patch
	for _, user := range r.users {
		if user.ID == id {
			if patch.INN != nil {
				user.INN = patch.INN
			}
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeSourceRepo struct {
	defaults    map[int64]*sourcemodels.Source
	createErr   error
	createCalls int
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{defaults: map[int64]*sourcemodels.Source{}}
}

func (r *fakeSourceRepo) ListPage(context.Context, int64, int, int) ([]sourcemodels.Source, error) {
	return nil, nil
}

func (r *fakeSourceRepo) Create(_ context.Context, insert sourcemodels.NewSourceInsert) (sourcemodels.Source, error) {
	r.createCalls++
	if r.createErr != nil {
		return sourcemodels.Source{}, r.createErr
	}
	source := sourcemodels.Source{
		ID:         fmt.Sprintf("s%d", r.createCalls),
		TelegramID: insert.TelegramID,
		Name:       insert.Name,
		Status:     insert.Status,
		IsDefault:  insert.IsDefault,
	}
	if insert.IsDefault {
		r.defaults[insert.TelegramID] = &source
	}
	return source, nil
}

func (r *fakeSourceRepo) Update(context.Context, string, any) (sourcemodels.Source, error) {
	return sourcemodels.Source{}, errors.New("not implemented")
}

func (r *fakeSourceRepo) Delete(context.Context, string) error {
	return errors.New("not implemented")
}

func (r *fakeSourceRepo) GetDefault(_ context.Context, ownerID int64) (*sourcemodels.Source, error) {
	if source, ok := r.defaults[ownerID]; ok {
		return source, nil
	}
	return nil, sourcerepo.ErrSourceNotFound
}

func newTestResolver(users *fakeUserRepo, sources *fakeSourceRepo) *Resolver {
	return NewResolver(users, sources, zerolog.Nop())
}

func identity(id int64, first string) telegram.Identity {
	return telegram.Identity{ID: id, FirstName: first}
}

func TestNewUserHappyPath(t *testing.T) {
	users := newFakeUserRepo()
	sources := newFakeSourceRepo()
	resolver := newTestResolver(users, sources)

	snap := resolver.Resolve(context.Background(), identity(42, "Ann"))

	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, int64(42), snap.User.TelegramID)
	assert.Equal(t, "Ann", snap.User.Name)
	assert.Equal(t, "u1", snap.User.ID)

	// Ровно два insert: пользователь и источник по умолчанию
	assert.Equal(t, 1, users.createCalls)
	assert.Equal(t, 1, sources.createCalls)
	require.NotNil(t, sources.defaults[42])
	assert.Equal(t, sourcemodels.DefaultSourceName, sources.defaults[42].Name)
	assert.True(t, sources.defaults[42].IsDefault)
}

func TestReturningUser(t *testing.T) {
	users := newFakeUserRepo()
	users.users[42] = &models.User{ID: "u1", TelegramID: 42, Name: "Ann"}
	sources := newFakeSourceRepo()
	sources.defaults[42] = &sourcemodels.Source{ID: "s1", TelegramID: 42, IsDefault: true}
	resolver := newTestResolver(users, sources)

	snap := resolver.Resolve(context.Background(), identity(42, "Ann"))

	assert.Equal(t, StateFound, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Equal(t, 1, users.lookupCalls)
	assert.Equal(t, 0, users.createCalls)
	assert.Equal(t, 0, sources.createCalls)
}

func TestIdempotentBootstrap(t *testing.T) {
	users := newFakeUserRepo()
	sources := newFakeSourceRepo()
	resolver := newTestResolver(users, sources)
	ctx := context.Background()

	first := resolver.Resolve(ctx, identity(42, "Ann"))
	second := resolver.Resolve(ctx, identity(42, "Ann"))

	assert.Equal(t, 1, users.createCalls, "second call performs no insert")
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, StateReady, second.State)
}

func TestSecondSessionFindsExistingUser(t *testing.T) {
	users := newFakeUserRepo()
	sources := newFakeSourceRepo()
	ctx := context.Background()

	newTestResolver(users, sources).Resolve(ctx, identity(42, "Ann"))
	snap := newTestResolver(users, sources).Resolve(ctx, identity(42, "Ann"))

	assert.Equal(t, StateFound, snap.State)
	assert.Equal(t, 1, users.createCalls, "exactly one user row across sessions")
}

func TestPartialCreationFailure(t *testing.T) {
	users := newFakeUserRepo()
	sources := newFakeSourceRepo()
	sources.createErr = errors.New("sources insert denied")
	resolver := newTestResolver(users, sources)

	snap := resolver.Resolve(context.Background(), identity(42, "Ann"))

	// Сбой источника не валит bootstrap
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.User)
	assert.NoError(t, snap.Err)
}

func TestDefaultSourceBackfill(t *testing.T) {
	users := newFakeUserRepo()
	sources := newFakeSourceRepo()
	sources.createErr = errors.New("sources insert denied")
	ctx := context.Background()

	newTestResolver(users, sources).Resolve(ctx, identity(42, "Ann"))
	require.Nil(t, sources.defaults[42])

	// Новая сессия: пользователь найден, источник дозаполнен
	sources.createErr = nil
	snap := newTestResolver(users, sources).Resolve(ctx, identity(42, "Ann"))

	assert.Equal(t, StateFound, snap.State)
	assert.Equal(t, 1, users.createCalls, "no duplicate user insert")
	require.NotNil(t, sources.defaults[42])
}

func TestLookupFailure(t *testing.T) {
	users := newFakeUserRepo()
	users.lookupErr = errors.New("permission denied")
	resolver := newTestResolver(users, newFakeSourceRepo())

	snap := resolver.Resolve(context.Background(), identity(42, "Ann"))

	assert.Equal(t, StateFailed, snap.State)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading, "loading never persists after failure")
	assert.Error(t, snap.Err)
}

func TestRetryAfterFailure(t *testing.T) {
	users := newFakeUserRepo()
	users.lookupErr = errors.New("network down")
	resolver := newTestResolver(users, newFakeSourceRepo())
	ctx := context.Background()

	snap := resolver.Resolve(ctx, identity(42, "Ann"))
	require.Equal(t, StateFailed, snap.State)

	// Повторный Resolve с той же identity — no-op, не второй запрос
	calls := users.lookupCalls
	snap = resolver.Resolve(ctx, identity(42, "Ann"))
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, calls, users.lookupCalls)

	// Явный Retry запускает машину заново
	users.lookupErr = nil
	snap = resolver.Retry(ctx)
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.User)
}

func TestAwaitingIdentity(t *testing.T) {
	resolver := newTestResolver(newFakeUserRepo(), newFakeSourceRepo())

	snap := resolver.Resolve(context.Background(), telegram.Identity{})

	assert.Equal(t, StateAwaitingIdentity, snap.State)
	assert.True(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestIdentityChangeRestartsMachine(t *testing.T) {
	users := newFakeUserRepo()
	sources := newFakeSourceRepo()
	resolver := newTestResolver(users, sources)
	ctx := context.Background()

	first := resolver.Resolve(ctx, identity(42, "Ann"))
	second := resolver.Resolve(ctx, identity(43, "Bob"))

	assert.Equal(t, int64(42), first.User.TelegramID)
	assert.Equal(t, int64(43), second.User.TelegramID)
	assert.Equal(t, 2, users.createCalls)
}

func TestUpdateProfile(t *testing.T) {
	users := newFakeUserRepo()
	resolver := newTestResolver(users, newFakeSourceRepo())
	ctx := context.Background()

	resolver.Resolve(ctx, identity(42, "Ann"))

	inn := "7712345678"
	updated, err := resolver.UpdateProfile(ctx, models.ProfilePatch{INN: &inn})
	require.NoError(t, err)
	require.NotNil(t, updated.INN)
	assert.Equal(t, inn, *updated.INN)
	assert.True(t, updated.HasRequisites())

	snap := resolver.Snapshot()
	require.NotNil(t, snap.User.INN)
	assert.Equal(t, inn, *snap.User.INN)

	// Временная метка проставляется сервисом, а не вызывающим
	assert.NotEmpty(t, users.lastPatch.UpdatedAt)
	_, err = time.Parse(time.RFC3339, users.lastPatch.UpdatedAt)
	assert.NoError(t, err)
}

func TestZeroIdentityAfterResolveKeepsState(t *testing.T) {
	users := newFakeUserRepo()
	resolver := newTestResolver(users, newFakeSourceRepo())
	ctx := context.Background()

	first := resolver.Resolve(ctx, identity(42, "Ann"))
	require.Equal(t, StateReady, first.State)

	// Пустая identity от хоста не откатывает завершённый bootstrap
	snap := resolver.Resolve(ctx, telegram.Identity{})
	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, first.User.ID, snap.User.ID)
}

func TestUpdateProfileWithoutUser(t *testing.T) {
	resolver := newTestResolver(newFakeUserRepo(), newFakeSourceRepo())

	_, err := resolver.UpdateProfile(context.Background(), models.ProfilePatch{})
	assert.ErrorIs(t, err, ErrNoUser)
}
