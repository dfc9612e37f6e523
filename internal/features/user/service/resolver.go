// Package service содержит Identity Resolver: превращает identity хоста в
// учётную запись приложения ровно один раз за сессию, с идемпотентным
// созданием пользователя и источника по умолчанию.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	sourcemodels "leadtrack-miniapp/internal/features/source/models"
	sourcerepo "leadtrack-miniapp/internal/features/source/repository"
	"leadtrack-miniapp/internal/features/user/models"
	"leadtrack-miniapp/internal/features/user/repository"
	"leadtrack-miniapp/internal/platform/telegram"
)

// State — состояние резолвера.
type State string

const (
	// StateAwaitingIdentity — identity хоста ещё не пришла.
	StateAwaitingIdentity State = "awaiting_identity"
	// StateResolving — identity есть, идёт поиск пользователя.
	StateResolving State = "resolving"
	// StateFound — пользователь найден, терминальное состояние.
	StateFound State = "found"
	// StateCreating — пользователь не найден, идёт создание.
	StateCreating State = "creating"
	// StateReady — пользователь создан, терминальное состояние.
	StateReady State = "ready"
	// StateFailed — ошибка поиска или создания, терминальное состояние.
	StateFailed State = "failed"
)

// ErrNoUser возвращается операциями, требующими завершённого bootstrap.
var ErrNoUser = errors.New("user is not resolved")

// Snapshot — единый согласованный срез состояния резолвера.
type Snapshot struct {
	User    *models.User
	Loading bool
	Err     error
	State   State
}

// Resolver находит или создаёт пользователя для identity текущей сессии.
// Повторный вызов Resolve с той же identity при незавершённом или
// терминальном состоянии — no-op: повторные срабатывания (например, из-за
// перерисовок UI) не должны приводить ко второму insert.
type Resolver struct {
	users   repository.UserRepository
	sources sourcerepo.SourceRepository
	log     zerolog.Logger

	mu         sync.Mutex
	state      State
	identityID int64
	identity   telegram.Identity
	user       *models.User
	err        error
}

func NewResolver(users repository.UserRepository, sources sourcerepo.SourceRepository, log zerolog.Logger) *Resolver {
	return &Resolver{
		users:   users,
		sources: sources,
		log:     log.With().Str("component", "resolver").Logger(),
		state:   StateAwaitingIdentity,
	}
}

// Resolve запускает bootstrap для identity. Терминальные состояния и
// незавершённая работа по той же identity возвращаются как есть; новая
// identity перезапускает машину.
func (r *Resolver) Resolve(ctx context.Context, identity telegram.Identity) Snapshot {
	r.mu.Lock()
	if identity.Zero() {
		// Хост ещё не сообщил identity. Пустой сигнал не сбрасывает уже
		// начатую или завершённую работу по настоящей identity.
		if r.identityID == 0 {
			r.state = StateAwaitingIdentity
		}
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap
	}

	if identity.ID == r.identityID {
		switch r.state {
		case StateResolving, StateCreating, StateFound, StateReady, StateFailed:
			snap := r.snapshotLocked()
			r.mu.Unlock()
			return snap
		}
	}

	// Новая identity: перезапуск машины
	r.identityID = identity.ID
	r.identity = identity
	r.user = nil
	r.err = nil
	r.state = StateResolving
	r.mu.Unlock()

	return r.run(ctx, identity)
}

// Retry повторяет bootstrap после ошибки. Вне состояния Failed — no-op.
func (r *Resolver) Retry(ctx context.Context) Snapshot {
	r.mu.Lock()
	if r.state != StateFailed || r.identity.Zero() {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap
	}
	identity := r.identity
	r.err = nil
	r.state = StateResolving
	r.mu.Unlock()

	return r.run(ctx, identity)
}

func (r *Resolver) run(ctx context.Context, identity telegram.Identity) Snapshot {
	log := r.log.With().Int64("user_id", identity.ID).Logger()
	log.Info().Msg("resolving user")

	user, err := r.users.GetByTelegramID(ctx, identity.ID)
	switch {
	case err == nil:
		// Пользователь уже есть: повторного создания не будет, но источник
		// по умолчанию мог не создаться в прошлый раз — дозаполняем.
		log.Info().Str("id", user.ID).Msg("existing user found")
		r.ensureDefaultSource(ctx, identity.ID, log)
		return r.finish(identity.ID, StateFound, user, nil)

	case errors.Is(err, repository.ErrUserNotFound):
		return r.create(ctx, identity, log)

	default:
		log.Error().Err(err).Msg("user lookup failed")
		return r.finish(identity.ID, StateFailed, nil, fmt.Errorf("user lookup failed: %w", err))
	}
}

func (r *Resolver) create(ctx context.Context, identity telegram.Identity, log zerolog.Logger) Snapshot {
	r.mu.Lock()
	if r.identityID != identity.ID {
		// Пока искали, identity сменилась — результат никому не нужен
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap
	}
	r.state = StateCreating
	r.mu.Unlock()

	log.Info().Msg("creating new user")

	insert := models.NewUserInsert{
		TelegramID: identity.ID,
		Name:       identity.DisplayName(),
	}
	if identity.Username != "" {
		insert.Username = &identity.Username
	}
	if identity.PhotoURL != "" {
		insert.Avatar = &identity.PhotoURL
	}

	user, err := r.users.Create(ctx, insert)
	if err != nil {
		log.Error().Err(err).Msg("user creation failed")
		return r.finish(identity.ID, StateFailed, nil, fmt.Errorf("user creation failed: %w", err))
	}

	// Источник по умолчанию создаётся вторым, независимым шагом: его сбой не
	// отменяет bootstrap, пользователь остаётся рабочим с нулём источников.
	if _, err := r.sources.Create(ctx, sourcemodels.DefaultSourceInsert(identity.ID)); err != nil {
		log.Warn().Err(err).Msg("default source creation failed, user is still usable")
	} else {
		log.Info().Msg("default source created")
	}

	log.Info().Str("id", user.ID).Msg("user created")
	return r.finish(identity.ID, StateReady, user, nil)
}

func (r *Resolver) ensureDefaultSource(ctx context.Context, telegramID int64, log zerolog.Logger) {
	_, err := r.sources.GetDefault(ctx, telegramID)
	if err == nil {
		return
	}
	if !errors.Is(err, sourcerepo.ErrSourceNotFound) {
		log.Warn().Err(err).Msg("default source check failed")
		return
	}
	if _, err := r.sources.Create(ctx, sourcemodels.DefaultSourceInsert(telegramID)); err != nil {
		log.Warn().Err(err).Msg("default source backfill failed")
		return
	}
	log.Info().Msg("default source backfilled")
}

func (r *Resolver) finish(identityID int64, state State, user *models.User, err error) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.identityID != identityID {
		return r.snapshotLocked()
	}
	r.state = state
	r.user = user
	r.err = err
	return r.snapshotLocked()
}

// UpdateProfile сохраняет правки профиля (реквизиты, имя) и обновляет
// закэшированного пользователя.
func (r *Resolver) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	r.mu.Lock()
	user := r.user
	r.mu.Unlock()
	if user == nil {
		return nil, ErrNoUser
	}

	if patch.UpdatedAt == "" {
		patch.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	updated, err := r.users.Update(ctx, user.ID, patch)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.user != nil && r.user.ID == updated.ID {
		r.user = updated
	}
	r.mu.Unlock()
	return updated, nil
}

// Snapshot возвращает текущее состояние резолвера.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resolver) snapshotLocked() Snapshot {
	return Snapshot{
		User:    r.user,
		Loading: r.state == StateAwaitingIdentity || r.state == StateResolving || r.state == StateCreating,
		Err:     r.err,
		State:   r.state,
	}
}
