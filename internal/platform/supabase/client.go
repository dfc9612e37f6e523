package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	acceptJSON       = "application/json"
	acceptSingleJSON = "application/vnd.pgrst.object+json"
)

// Config задаёт подключение к PostgREST. Ключ и адрес всегда приходят из
// конфигурации — в коде они не зашиваются.
type Config struct {
	BaseURL    string
	APIKey     string
	Schema     string
	ClientInfo string
}

// Client — тонкий REST-клиент поверх Supabase/PostgREST: фильтрованные
// выборки, вставка/обновление с возвратом строки, upsert и удаление.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	schema     string
	clientInfo string
	log        zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		schema:     cfg.Schema,
		clientInfo: cfg.ClientInfo,
		log:        log.With().Str("component", "supabase").Logger(),
	}
}

// SetHTTPClient подменяет транспорт (используется в тестах).
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Select выполняет фильтрованную выборку и декодирует список строк в dst.
func (c *Client) Select(ctx context.Context, table string, q Query, dst any) error {
	return c.do(ctx, http.MethodGet, table, q, nil, dst, requestOptions{})
}

// SelectSingle выполняет точечную выборку; отсутствие строки возвращается как
// ошибка с ErrNoRows в цепочке, любой другой сбой — как обычная ошибка.
func (c *Client) SelectSingle(ctx context.Context, table string, q Query, dst any) error {
	return c.do(ctx, http.MethodGet, table, q, nil, dst, requestOptions{single: true})
}

// Insert вставляет одну строку и декодирует созданную запись (с серверным id
// и временными метками) в dst.
func (c *Client) Insert(ctx context.Context, table string, body any, dst any) error {
	return c.do(ctx, http.MethodPost, table, NewQuery(), body, dst, requestOptions{
		single: dst != nil,
		prefer: "return=representation",
	})
}

// Update обновляет строки по фильтру и декодирует обновлённую запись в dst.
func (c *Client) Update(ctx context.Context, table string, q Query, body any, dst any) error {
	return c.do(ctx, http.MethodPatch, table, q, body, dst, requestOptions{
		single: dst != nil,
		prefer: "return=representation",
	})
}

// Upsert вставляет или обновляет строку по ключу конфликта.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, body any, dst any) error {
	return c.do(ctx, http.MethodPost, table, NewQuery().OnConflict(onConflict), body, dst, requestOptions{
		single: dst != nil,
		prefer: "resolution=merge-duplicates,return=representation",
	})
}

// Delete удаляет строки по фильтру.
func (c *Client) Delete(ctx context.Context, table string, q Query) error {
	return c.do(ctx, http.MethodDelete, table, q, nil, nil, requestOptions{})
}

type requestOptions struct {
	single bool
	prefer string
}

func (c *Client) do(ctx context.Context, method, table string, q Query, body, dst any, opts requestOptions) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if encoded := q.encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.clientInfo != "" {
		req.Header.Set("X-Client-Info", c.clientInfo)
	}
	if c.schema != "" && c.schema != "public" {
		req.Header.Set("Accept-Profile", c.schema)
		req.Header.Set("Content-Profile", c.schema)
	}
	if body != nil {
		req.Header.Set("Content-Type", acceptJSON)
	}
	if opts.single {
		req.Header.Set("Accept", acceptSingleJSON)
	} else {
		req.Header.Set("Accept", acceptJSON)
	}
	if opts.prefer != "" {
		req.Header.Set("Prefer", opts.prefer)
	}
	if q.hasRange {
		req.Header.Set("Range-Unit", "items")
		req.Header.Set("Range", fmt.Sprintf("%d-%d", q.from, q.to))
	}

	c.log.Debug().Str("method", method).Str("table", table).Str("url", endpoint).Msg("request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if len(raw) > 0 {
			// Тело ошибки может быть не-JSON (например, от прокси)
			_ = json.Unmarshal(raw, apiErr)
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("code", apiErr.Code).Str("table", table).Msg("error response")
		return apiErr
	}

	if dst == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", table, err)
	}
	return nil
}
