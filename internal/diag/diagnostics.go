// Package diag — опциональные сетевые проверки доступности хранилища.
// Ядро приложения от этого пакета не зависит; конфигурация внедряется
// снаружи, ключи в коде не прописываются.
package diag

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Check — результат одной проверки.
type Check struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// Report — итог прогона всех проверок.
type Report struct {
	Checks []Check `json:"checks"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Config задаёт адрес и ключи для проверок.
type Config struct {
	BaseURL string
	APIKey  string
	// AnonKey, если задан, проверяется отдельно для сравнения доступов.
	AnonKey string
	// Tables — таблицы для точечных проб.
	Tables []string
}

type Runner struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	if len(cfg.Tables) == 0 {
		cfg.Tables = []string{"users", "applications", "sources", "lessons", "user_lessons"}
	}
	return &Runner{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "diag").Logger(),
	}
}

// SetHTTPClient подменяет транспорт (используется в тестах).
func (r *Runner) SetHTTPClient(hc *http.Client) {
	r.httpClient = hc
}

// Run выполняет проверки последовательно и возвращает отчёт.
func (r *Runner) Run(ctx context.Context) Report {
	var report Report

	report.Checks = append(report.Checks, r.probe(ctx, "rest_root", "/rest/v1/", r.cfg.APIKey))
	for _, table := range r.cfg.Tables {
		name := "table_" + table
		path := fmt.Sprintf("/rest/v1/%s?select=id&limit=1", table)
		report.Checks = append(report.Checks, r.probe(ctx, name, path, r.cfg.APIKey))
	}
	if r.cfg.AnonKey != "" {
		report.Checks = append(report.Checks, r.probe(ctx, "anon_access", "/rest/v1/lessons?select=id&limit=1", r.cfg.AnonKey))
	}

	for _, c := range report.Checks {
		event := r.log.Info()
		if !c.OK {
			event = r.log.Error()
		}
		event.Str("check", c.Name).Bool("ok", c.OK).Dur("latency", c.Latency).Str("error", c.Error).Msg("diagnostic check")
	}
	return report
}

func (r *Runner) probe(ctx context.Context, name, path, key string) Check {
	start := time.Now()
	check := Check{Name: name}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+path, nil)
	if err != nil {
		check.Error = err.Error()
		check.Latency = time.Since(start)
		return check
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := r.httpClient.Do(req)
	check.Latency = time.Since(start)
	if err != nil {
		check.Error = err.Error()
		return check
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		check.Error = fmt.Sprintf("status %d", resp.StatusCode)
		return check
	}
	check.OK = true
	return check
}
