package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Supabase struct {
		URL string `env:"SUPABASE_URL,required"`
		// Сервисный ключ используется клиентом приложения (как и в оригинальном
		// фронтенде), анонимный — для диагностики и сравнения доступов.
		ServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required"`
		AnonKey        string `env:"SUPABASE_ANON_KEY" envDefault:""`
		Schema         string `env:"SUPABASE_SCHEMA" envDefault:"public"`
		ClientInfo     string `env:"SUPABASE_CLIENT_INFO" envDefault:"hr-telegram-app"`
	}

	Session struct {
		PageSize     int           `env:"PAGE_SIZE" envDefault:"20"`
		IdentityWait time.Duration `env:"IDENTITY_WAIT" envDefault:"3s"`
	}

	Proxy struct {
		Port           int           `env:"PROXY_PORT" envDefault:"3001"`
		AllowedOrigins []string      `env:"PROXY_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
		CacheTTL       time.Duration `env:"PROXY_CACHE_TTL" envDefault:"30s"`
		// Проверка init_data включается только при заданном токене бота.
		RequireInitData bool `env:"PROXY_REQUIRE_INIT_DATA" envDefault:"false"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:""`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN" envDefault:""`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку, если .env файл не найден
		// В production окружении переменные могут быть установлены напрямую
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
