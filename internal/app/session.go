// Package app собирает граф зависимостей клиента: конфигурация → REST-клиент
// → репозитории → резолвер → постраничные store. Никаких глобальных
// синглтонов — все зависимости передаются явно.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	appsupa "leadtrack-miniapp/internal/features/application/repository/supabase"
	appservice "leadtrack-miniapp/internal/features/application/service"
	lessonsupa "leadtrack-miniapp/internal/features/lesson/repository/supabase"
	lessonservice "leadtrack-miniapp/internal/features/lesson/service"
	sourcesupa "leadtrack-miniapp/internal/features/source/repository/supabase"
	sourceservice "leadtrack-miniapp/internal/features/source/service"
	usersupa "leadtrack-miniapp/internal/features/user/repository/supabase"
	userservice "leadtrack-miniapp/internal/features/user/service"

	"leadtrack-miniapp/internal/common/config"
	"leadtrack-miniapp/internal/platform/supabase"
	"leadtrack-miniapp/internal/platform/telegram"
)

// Session — один запуск Mini App: резолвер identity и три коллекции,
// привязанные к пользователю после bootstrap.
type Session struct {
	cfg      *config.Config
	log      zerolog.Logger
	client   *supabase.Client
	provider telegram.IdentityProvider
	bridge   telegram.Bridge

	resolver     *userservice.Resolver
	applications *appservice.Service
	sources      *sourceservice.Service
	lessons      *lessonservice.Service
}

func New(cfg *config.Config, provider telegram.IdentityProvider, bridge telegram.Bridge, log zerolog.Logger) *Session {
	client := supabase.NewClient(supabase.Config{
		BaseURL:    cfg.Supabase.URL,
		APIKey:     cfg.Supabase.ServiceRoleKey,
		Schema:     cfg.Supabase.Schema,
		ClientInfo: cfg.Supabase.ClientInfo,
	}, log)

	userRepo := usersupa.NewSupabaseRepository(client)
	sourceRepo := sourcesupa.NewSupabaseRepository(client)
	applicationRepo := appsupa.NewSupabaseRepository(client)
	lessonRepo := lessonsupa.NewSupabaseRepository(client)

	if bridge == nil {
		bridge = telegram.NopBridge{}
	}

	pageSize := cfg.Session.PageSize
	return &Session{
		cfg:          cfg,
		log:          log,
		client:       client,
		provider:     provider,
		bridge:       bridge,
		resolver:     userservice.NewResolver(userRepo, sourceRepo, log),
		applications: appservice.NewService(applicationRepo, pageSize, log),
		sources:      sourceservice.NewService(sourceRepo, pageSize, log),
		lessons:      lessonservice.NewService(lessonRepo, pageSize, log),
	}
}

// Start ждёт identity хоста (ограниченно, с плейсхолдером при молчании),
// проводит bootstrap пользователя и запускает первичную загрузку коллекций.
// Коллекции загружаются независимо друг от друга; их ошибки остаются в
// снапшотах store и не роняют сессию.
func (s *Session) Start(ctx context.Context) userservice.Snapshot {
	identity := telegram.AwaitIdentity(ctx, s.provider, s.cfg.Session.IdentityWait, s.log)

	snap := s.resolver.Resolve(ctx, identity)
	if snap.User == nil {
		return snap
	}

	owner := snap.User.TelegramID
	s.applications.SetOwner(owner)
	s.sources.SetOwner(owner)
	s.lessons.SetOwner(owner)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		_ = s.applications.Store().Load(ctx, true)
	}()
	go func() {
		defer wg.Done()
		_ = s.sources.Store().Load(ctx, true)
	}()
	go func() {
		defer wg.Done()
		_ = s.lessons.Store().Load(ctx, true)
	}()
	go func() {
		defer wg.Done()
		if err := s.lessons.RefreshProgress(ctx); err != nil {
			s.log.Warn().Err(err).Msg("lesson progress load failed")
		}
	}()
	wg.Wait()

	return snap
}

func (s *Session) Resolver() *userservice.Resolver   { return s.resolver }
func (s *Session) Applications() *appservice.Service { return s.applications }
func (s *Session) Sources() *sourceservice.Service   { return s.sources }
func (s *Session) Lessons() *lessonservice.Service   { return s.lessons }

// Haptic пробрасывает тактильный отклик хосту.
func (s *Session) Haptic(style telegram.HapticStyle) {
	s.bridge.Haptic(style)
}

// Внеполосные действия: ответа от хоста не ожидается.

// RequestResponses просит бота прислать отклики компании.
func (s *Session) RequestResponses() {
	s.bridge.SendData(map[string]string{"action": "request_responses"})
}

// RequestSupport открывает обращение в поддержку.
func (s *Session) RequestSupport() {
	s.bridge.SendData(map[string]string{"action": "support_request"})
}

// TerminateContract отправляет запрос на расторжение договора.
func (s *Session) TerminateContract() {
	s.bridge.SendData(map[string]string{"action": "terminate_contract"})
}
