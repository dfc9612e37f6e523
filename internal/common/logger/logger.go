// Package logger настраивает zerolog для бинарей проекта. Глобального
// логгера нет: корень сервиса создаёт логгер и передаёт его вниз по графу
// зависимостей, компоненты вешают свои поля через With().
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New возвращает именованный консольный логгер. debug включает уровень
// Debug, иначе Info.
func New(service string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
