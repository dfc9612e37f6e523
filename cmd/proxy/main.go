package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"leadtrack-miniapp/internal/common/config"
	"leadtrack-miniapp/internal/common/logger"
	apphttp "leadtrack-miniapp/internal/http"
	redisplatform "leadtrack-miniapp/internal/platform/redis"
)

func main() {
	// Create cancellable root context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	log := logger.New("leadtrack-proxy", cfg.Debug)

	var rdb *redisplatform.Client
	if cfg.Redis.Addr != "" {
		var err error
		rdb, err = redisplatform.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis open failed")
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("response cache enabled")
	}

	router, err := apphttp.NewRouter(cfg, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	addr := fmt.Sprintf(":%d", cfg.Proxy.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Str("target", cfg.Supabase.URL).Msg("proxy listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
