// Package cache holds the optional Redis-backed session lookup cache. The
// database stays the source of truth; entries only shorten the auth gate's
// path for tokens that were recently seen.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "petnest:"

// Connect initializes a Redis client from a redis:// URL or a host:port
// address and checks that the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSessionCache caches active sessions by token. Revoked tokens leave a
// short-lived marker that blocks a concurrent lookup from caching them again.
type RedisSessionCache struct {
	client redis.UniversalClient
}

func NewRedisSessionCache(client redis.UniversalClient) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

type cachedSession struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string { return keyPrefix + "session:" + token }

func revokedKey(token string) string { return keyPrefix + "revoked:" + token }

func encode(s *models.Session) ([]byte, error) {
	return json.Marshal(cachedSession{
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		CreatedAt: s.CreatedAt,
	})
}

func decode(token string, raw []byte) (*models.Session, error) {
	var c cachedSession
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &models.Session{
		Token:     token,
		UserID:    c.UserID,
		ExpiresAt: c.ExpiresAt,
		IPAddress: c.IPAddress,
		UserAgent: c.UserAgent,
		CreatedAt: c.CreatedAt,
	}, nil
}

// Get returns the cached session for token, or nil when there is none.
func (c *RedisSessionCache) Get(ctx context.Context, token string) (*models.Session, error) {
	raw, err := c.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decode(token, raw)
}

// Set caches s for ttl unless the token has been revoked. The revocation
// marker is watched, so a Revoke racing with Set wins. A non-positive ttl is
// a no-op.
func (c *RedisSessionCache) Set(ctx context.Context, s *models.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := encode(s)
	if err != nil {
		return err
	}

	rk := revokedKey(s.Token)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, rk).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, sessionKey(s.Token), raw, ttl)
			return nil
		})
		return err
	}, rk)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Revoke drops tokens from the cache and marks them revoked for markerTTL.
func (c *RedisSessionCache) Revoke(ctx context.Context, markerTTL time.Duration, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	if markerTTL <= 0 {
		markerTTL = time.Minute
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, t := range tokens {
			p.Set(ctx, revokedKey(t), 1, markerTTL)
			p.Del(ctx, sessionKey(t))
		}
		return nil
	})
	return err
}
