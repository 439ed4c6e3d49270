// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
)

// RedisSessionRepository implements [SessionRepository] using Redis.
//
// Each session is a plain string key holding the owner's user ID; Redis
// expiry is the session lifetime.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

/*
Create stores the session with its TTL.

Parameters:
  - ctx: context.Context
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisSessionRepository) Create(ctx context.Context, session *Session, ttl time.Duration) error {
	if err := repository.client.Set(ctx, sessionKey(session.ID), session.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
FindUserID resolves a session ID to its owner.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - string: UserID
  - error: apperr AUTH_REQUIRED when missing, or connectivity errors
*/
func (repository *RedisSessionRepository) FindUserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := repository.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.AuthRequired()
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return userID, nil
}

/*
Delete removes the session key.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := repository.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
