// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package redis opens the go-redis client backing the session store.
//
// Sessions are the only thing kept in Redis; each is one key with a TTL, so
// the client needs few connections and short timeouts.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
)

const (
	poolSize     = 8
	minIdleConns = 1
	dialTimeout  = 3 * time.Second
	ioTimeout    = time.Second
	pingTimeout  = 2 * time.Second
)

/*
NewClient parses redisURL, connects and pings.

Parameters:
  - ctx: context.Context (startup deadline)
  - redisURL: redis:// or rediss:// URL
  - logger: *slog.Logger

Returns:
  - *redis.Client
  - error: Parse or ping failures
*/
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	opts.ClientName = constants.AppName
	opts.PoolSize = poolSize
	opts.MinIdleConns = minIdleConns
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout

	client := redis.NewClient(opts)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return client, nil
}

// Ping checks the client within a short deadline. It backs the /ready probe.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}
