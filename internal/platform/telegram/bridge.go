package telegram

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// HapticStyle — именованный стиль тактильного отклика хоста.
type HapticStyle string

const (
	HapticLight   HapticStyle = "light"
	HapticMedium  HapticStyle = "medium"
	HapticHeavy   HapticStyle = "heavy"
	HapticRigid   HapticStyle = "rigid"
	HapticSoft    HapticStyle = "soft"
	HapticSuccess HapticStyle = "success"
	HapticWarning HapticStyle = "warning"
	HapticError   HapticStyle = "error"
)

// Bridge — исходящая сторона моста с хостом: haptics и sendData.
// Все вызовы fire-and-forget, ответ не ожидается, сбои проглатываются.
type Bridge interface {
	Haptic(style HapticStyle)
	SendData(payload any)
}

// HostFunc доставляет событие хосту (в WebView это window.Telegram.WebApp).
type HostFunc func(event string, payload string) error

// HostBridge отправляет события хосту через внедрённую функцию доставки.
type HostBridge struct {
	send HostFunc
	log  zerolog.Logger
}

func NewHostBridge(send HostFunc, log zerolog.Logger) *HostBridge {
	return &HostBridge{
		send: send,
		log:  log.With().Str("component", "telegram-bridge").Logger(),
	}
}

func (b *HostBridge) Haptic(style HapticStyle) {
	if b.send == nil {
		return
	}
	if err := b.send("haptic", string(style)); err != nil {
		b.log.Debug().Err(err).Str("style", string(style)).Msg("haptic feedback failed")
	}
}

func (b *HostBridge) SendData(payload any) {
	if b.send == nil {
		return
	}
	data, err := encodePayload(payload)
	if err != nil {
		b.log.Debug().Err(err).Msg("failed to encode callback payload")
		return
	}
	if err := b.send("send_data", data); err != nil {
		b.log.Debug().Err(err).Msg("callback send failed")
	}
}

func encodePayload(payload any) (string, error) {
	switch v := payload.(type) {
	case string:
		return v, nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to marshal payload: %w", err)
		}
		return string(data), nil
	}
}

// NopBridge используется вне хоста.
type NopBridge struct{}

func (NopBridge) Haptic(HapticStyle) {}
func (NopBridge) SendData(any)       {}
