package main

import (
	"context"
	"os"
	"time"

	"leadtrack-miniapp/internal/common/config"
	"leadtrack-miniapp/internal/common/logger"
	"leadtrack-miniapp/internal/diag"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New("leadtrack-diag", cfg.Debug)

	runner := diag.NewRunner(diag.Config{
		BaseURL: cfg.Supabase.URL,
		APIKey:  cfg.Supabase.ServiceRoleKey,
		AnonKey: cfg.Supabase.AnonKey,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report := runner.Run(ctx)
	if !report.OK() {
		log.Error().Msg("diagnostics failed")
		os.Exit(1)
	}
	log.Info().Msg("all checks passed")
}
