package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/numguess/internal/game"
)

const (
	// Key prefix for session values
	sessionKeyPrefix = "numguess:session:"

	// Optimistic transaction retries before Update gives up
	maxUpdateRetries = 5
)

// ErrTooMuchContention is returned when Update keeps losing WATCH races.
var ErrTooMuchContention = errors.New("session update retries exhausted")

// RedisConfig holds configuration for the Redis session store
type RedisConfig struct {
	// Redis client
	RedisClient *redis.Client

	// Idle expiry, refreshed on every write; zero keeps sessions forever
	TTL time.Duration
}

// redisStore implements Store using Redis
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed session store
func NewRedis(ctx context.Context, cfg *RedisConfig) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{client: cfg.RedisClient, ttl: cfg.TTL}, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func decodeSession(raw []byte) (*game.Session, error) {
	var s game.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.Scoreboard == nil {
		s.Scoreboard = []game.ScoreEntry{}
	}
	return &s, nil
}

// Get retrieves a session from Redis
func (r *redisStore) Get(ctx context.Context, id string) (*game.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(raw)
}

// Save persists a session to Redis
func (r *redisStore) Save(ctx context.Context, s *game.Session) error {
	if s == nil || s.ID == "" {
		return ErrNilSession
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Update runs fn inside a WATCH on the session key and retries when another
// writer touched the key between read and write.
func (r *redisStore) Update(ctx context.Context, id string, create NewSessionFunc, fn MutateFunc) (*game.Session, error) {
	key := sessionKey(id)
	var out *game.Session
	var fnErr error

	txf := func(tx *redis.Tx) error {
		out, fnErr = nil, nil

		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if create == nil {
				return ErrNotFound
			}
			out = create(id)
		case err != nil:
			return fmt.Errorf("failed to get session: %w", err)
		default:
			if out, err = decodeSession(raw); err != nil {
				return err
			}
		}

		if fnErr = fn(out); fnErr != nil {
			return nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
	}
	return nil, ErrTooMuchContention
}

// Delete removes a session from Redis
func (r *redisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
