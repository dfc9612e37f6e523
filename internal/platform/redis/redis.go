// Package redis — соединение для кэша ответов dev-прокси.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client оборачивает go-redis; прокси-кэшу нужны только Get и SetEx.
type Client struct {
	*redis.Client
}

// Open открывает соединение и сразу проверяет его пингом: прокси не должен
// стартовать с нерабочим кэшем.
func Open(ctx context.Context, addr, password string, db int) (*Client, error) {
	if addr == "" {
		return nil, errors.New("redis addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}
