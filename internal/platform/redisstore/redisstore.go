// Package redisstore keeps durable snapshots in Redis, one string value per
// key.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/phrazzld/genflow/internal/durable"
)

// DefaultTimeout bounds each Redis round trip when none is configured.
const DefaultTimeout = 3 * time.Second

// Options configures the stores built by a Client.
type Options struct {
	// TTL expires snapshots that are not rewritten; 0 keeps them forever
	TTL time.Duration

	// Timeout bounds each call
	Timeout time.Duration

	// Capacity caps a single payload in bytes; 0 disables the cap
	Capacity int
}

// Client wraps a go-redis client and hands out keyed stores.
type Client struct {
	rdb  *redis.Client
	opts Options
}

// Connect dials Redis and verifies the connection with PING.
func Connect(ctx context.Context, addr, password string, db int, opts Options) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	c := New(rdb, opts)
	pingCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return c, nil
}

// New wraps an existing client.
func New(rdb *redis.Client, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{rdb: rdb, opts: opts}
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Store returns the durable.Store bound to key. It satisfies durable.Factory.
func (c *Client) Store(key string) durable.Store {
	return &Store{client: c, key: key}
}

// scanCount is the COUNT hint for each SCAN page.
const scanCount = 100

// Keys lists the snapshot keys held in Redis, including per-context keys,
// sorted. It walks the keyspace with SCAN so a live server is never blocked.
func (c *Client) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	seen := make(map[string]struct{})
	iter := c.rdb.Scan(ctx, 0, durable.DefaultKey+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if key == durable.DefaultKey || strings.HasPrefix(key, durable.DefaultKey+":") {
			seen[key] = struct{}{}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshot keys: %w", mapError(err))
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opts.Timeout)
}

// Store is a durable.Store backed by a single Redis key.
type Store struct {
	client *Client
	key    string
}

// Read returns the stored snapshot, or durable.ErrNotFound when the key is
// absent or expired.
func (s *Store) Read() ([]byte, error) {
	ctx, cancel := s.client.callContext(context.Background())
	defer cancel()

	raw, err := s.client.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		return nil, durable.NewStoreError(durable.OpRead, s.key, mapError(err))
	}
	return raw, nil
}

// Write replaces the stored snapshot and refreshes its TTL.
func (s *Store) Write(raw []byte) error {
	if s.client.opts.Capacity > 0 && len(raw) > s.client.opts.Capacity {
		return durable.NewStoreError(durable.OpWrite, s.key,
			fmt.Errorf("%w: %d bytes exceeds %d", durable.ErrQuotaExceeded, len(raw), s.client.opts.Capacity))
	}

	ctx, cancel := s.client.callContext(context.Background())
	defer cancel()

	if err := s.client.rdb.Set(ctx, s.key, raw, s.client.opts.TTL).Err(); err != nil {
		return durable.NewStoreError(durable.OpWrite, s.key, mapError(err))
	}
	return nil
}

// Erase deletes the key. Deleting an absent key succeeds.
func (s *Store) Erase() error {
	ctx, cancel := s.client.callContext(context.Background())
	defer cancel()

	if err := s.client.rdb.Del(ctx, s.key).Err(); err != nil {
		return durable.NewStoreError(durable.OpErase, s.key, mapError(err))
	}
	return nil
}

// mapError translates go-redis errors into durable errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, redis.Nil):
		return durable.ErrNotFound
	case isOutOfMemory(err):
		return fmt.Errorf("%w: %v", durable.ErrQuotaExceeded, err)
	default:
		return fmt.Errorf("%w: %v", durable.ErrUnavailable, err)
	}
}

// isOutOfMemory matches the OOM reply Redis sends once maxmemory is reached.
func isOutOfMemory(err error) bool {
	var redisErr redis.Error
	if !errors.As(err, &redisErr) {
		return false
	}
	return strings.HasPrefix(redisErr.Error(), "OOM")
}
