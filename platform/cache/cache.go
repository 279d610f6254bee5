// Package cache provides the shared TTL cache used by the validation and
// search layers to bound external-lookup cost.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or its TTL has elapsed.
var ErrMiss = errors.New("cache: miss")

// Store is the key/value contract consumed by all layers. Entries always
// carry an explicit TTL; concurrent writers for the same key race and
// last-write-wins is the accepted outcome.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Fingerprint derives a composite cache key from a namespace, the acting
// user, and the request payload. The namespace stays readable for
// operability; actor and payload are hashed.
func Fingerprint(namespace, actor, payload string) string {
	sum := sha256.Sum256([]byte(actor + "\x00" + payload))
	return namespace + ":" + hex.EncodeToString(sum[:16])
}

// Redis is the production Store backed by go-redis.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis using a URL (redis:// or rediss://).
func NewRedis(redisURL string, tlsInsecure bool) (*Redis, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil && tlsInsecure {
		clone := opt.TLSConfig.Clone()
		clone.InsecureSkipVerify = true
		opt.TLSConfig = clone
	} else if opt.TLSConfig == nil && tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Redis{client: redis.NewClient(opt)}, nil
}

// NewRedisWithClient wraps an existing client (used by tests with miniredis).
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns the value for key, or ErrMiss when absent or expired.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set writes the value with an explicit TTL. A non-positive TTL is refused:
// no component may create an entry that outlives its declared expiry.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache: ttl must be positive for key %q", key)
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes the key. Deleting an absent key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping verifies connectivity, used by readiness checks.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)

// GetJSON reads and unmarshals a cached JSON value into out.
func GetJSON(ctx context.Context, store Store, key string, out interface{}) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

// SetJSON marshals value and writes it with the given TTL.
func SetJSON(ctx context.Context, store Store, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(raw), ttl)
}
