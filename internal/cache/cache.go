// Package cache provides the key/value store that bounds offer-source cost
// and latency. Keys are stable hashes of the query parameters, values are
// JSON-encoded pipeline output with a TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Key prefixes and TTLs per cached concern.
const (
	SearchPrefix  = "search:"
	ResolvePrefix = "resolve:"

	DefaultSearchTTL  = 10 * time.Minute
	DefaultResolveTTL = 12 * time.Hour
)

// Store is the cache contract the use case layer depends on. Misses and
// backend failures both report ok=false; the caller always has a live path.
type Store interface {
	// Get returns the raw cached value for key, or ok=false on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given TTL. Errors are returned for
	// logging but callers treat the write as best effort.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases the underlying connection.
	Close() error
}

// Redis implements Store on a Redis backend.
type Redis struct {
	client *redis.Client
}

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil, false
	}
	return data, true
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}

// NoOp is the fallback used when no Redis address is configured: every read
// misses and every write succeeds silently.
type NoOp struct{}

// NewNoOp creates a NoOp store.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Get implements Store.
func (NoOp) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set implements Store.
func (NoOp) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Close implements Store.
func (NoOp) Close() error { return nil }

// Key builds a stable cache key: the prefix plus the hex SHA-256 of the
// canonical JSON encoding of params. Equal parameter values always produce
// equal keys regardless of where the query came from.
func Key(prefix string, params any) string {
	data, _ := json.Marshal(params)
	sum := sha256.Sum256(data)
	return prefix + hex.EncodeToString(sum[:])
}
