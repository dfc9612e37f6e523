package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// Identity — данные пользователя, которые передаёт хост Mini App.
type Identity struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	PhotoURL  string
}

// Zero reports whether the host has not supplied an identity.
func (i Identity) Zero() bool {
	return i.ID == 0
}

// DisplayName собирает отображаемое имя из first/last name, как это делает
// приложение при создании пользователя.
func (i Identity) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
}

// PlaceholderID используется вне Telegram, чтобы интерфейс не ждал identity
// бесконечно.
const PlaceholderID int64 = 999999999

// PlaceholderIdentity возвращает детерминированную identity для запуска вне
// хоста (локальная разработка, браузер).
func PlaceholderIdentity() Identity {
	return Identity{
		ID:        PlaceholderID,
		FirstName: "Dev",
		LastName:  "User",
	}
}

// ParseIdentity извлекает пользователя из строки init_data без проверки
// подписи. Для проверки подписи см. ValidateInitData.
func ParseIdentity(raw string) (Identity, error) {
	parsed, err := initdata.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid init_data format: %w", err)
	}
	if parsed.User.ID == 0 {
		return Identity{}, fmt.Errorf("init_data has no user")
	}
	return Identity{
		ID:        parsed.User.ID,
		FirstName: parsed.User.FirstName,
		LastName:  parsed.User.LastName,
		Username:  parsed.User.Username,
		PhotoURL:  parsed.User.PhotoURL,
	}, nil
}

// ValidateInitData проверяет подпись и срок действия init_data.
// expIn == 0 отключает проверку срока (контракт библиотеки).
func ValidateInitData(raw, botToken string, expIn time.Duration) error {
	return initdata.Validate(raw, botToken, expIn)
}

// IdentityProvider отдаёт identity хоста; может блокироваться, пока хост не
// сообщит данные.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, error)
}

// InitDataProvider разбирает identity из сырой строки init_data.
type InitDataProvider struct {
	Raw string
	// BotToken включает проверку подписи, если задан.
	BotToken string
	TTL      time.Duration
}

func (p InitDataProvider) Identity(ctx context.Context) (Identity, error) {
	if p.Raw == "" {
		return Identity{}, nil
	}
	if p.BotToken != "" {
		if err := ValidateInitData(p.Raw, p.BotToken, p.TTL); err != nil {
			return Identity{}, fmt.Errorf("init_data validation failed: %w", err)
		}
	}
	return ParseIdentity(p.Raw)
}

// StaticProvider отдаёт заранее известную identity (тесты, CLI).
type StaticProvider struct {
	Value Identity
	Err   error
}

func (p StaticProvider) Identity(ctx context.Context) (Identity, error) {
	return p.Value, p.Err
}

// AwaitIdentity ждёт identity от провайдера не дольше wait и подставляет
// плейсхолдер, если хост так и не ответил. Отсутствие identity — не ошибка:
// интерфейс должен оставаться рабочим вне Telegram.
func AwaitIdentity(ctx context.Context, provider IdentityProvider, wait time.Duration, log zerolog.Logger) Identity {
	if wait <= 0 {
		wait = 3 * time.Second
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	type result struct {
		identity Identity
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		id, err := provider.Identity(waitCtx)
		ch <- result{identity: id, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Warn().Err(res.err).Msg("host identity unavailable, using placeholder")
			return PlaceholderIdentity()
		}
		if res.identity.Zero() {
			log.Info().Msg("no host identity, using placeholder")
			return PlaceholderIdentity()
		}
		return res.identity
	case <-waitCtx.Done():
		log.Warn().Dur("wait", wait).Msg("host identity timed out, using placeholder")
		return PlaceholderIdentity()
	}
}
