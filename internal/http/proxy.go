// Package http — dev-прокси перед Supabase: снимает CORS-ограничения
// локальной разработки и подставляет ключи доступа из конфигурации, чтобы
// они не попадали в клиентский код.
package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"leadtrack-miniapp/internal/common/config"
	"leadtrack-miniapp/internal/http/middleware"
	rplatform "leadtrack-miniapp/internal/platform/redis"
)

const proxyPrefix = "/api/supabase"

// NewRouter собирает gin-роутер прокси. rdb может быть nil — тогда кэш
// ответов отключён.
func NewRouter(cfg *config.Config, rdb *rplatform.Client, log zerolog.Logger) (*gin.Engine, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	target, err := url.Parse(cfg.Supabase.URL)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(log), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Proxy.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Prefer", "Range", "Range-Unit", "X-Telegram-Init-Data", "X-Client-Info"},
		AllowCredentials: true,
	}))

	if cfg.Proxy.RequireInitData {
		router.Use(middleware.InitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL))
	}
	if rdb != nil {
		router.Use(middleware.RedisCache(rdb, cfg.Proxy.CacheTTL))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	proxy := newSupabaseProxy(target, cfg.Supabase.ServiceRoleKey, log)
	router.Any(proxyPrefix+"/*path", gin.WrapH(proxy))

	return router, nil
}

func newSupabaseProxy(target *url.URL, apiKey string, log zerolog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)

	defaultDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		defaultDirector(req)
		// /api/supabase/rest/v1/... -> /rest/v1/...
		req.URL.Path = strings.TrimPrefix(req.URL.Path, proxyPrefix)
		if req.URL.Path == "" {
			req.URL.Path = "/"
		}
		req.Host = target.Host

		// Ключи подставляются здесь, клиент их не знает
		req.Header.Set("apikey", apiKey)
		req.Header.Set("Authorization", "Bearer "+apiKey)

		log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("proxying request")
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("proxy error")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
	}

	return proxy
}
