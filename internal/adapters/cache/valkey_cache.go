package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

const valkeyKeyPrefix = "tweet-sentiment:prediction:"

// ValkeyOptions configures the Valkey connection
type ValkeyOptions struct {
	Address  string
	Password string
	DB       int
	TLS      bool
}

// ValkeyCache stores predictions in Valkey and relies on key expiry for cleanup
type ValkeyCache struct {
	client   valkey.Client
	logger   *zap.Logger
	stopOnce sync.Once
}

// NewValkeyCache connects to Valkey and verifies the connection with a ping
func NewValkeyCache(opts ValkeyOptions, logger *zap.Logger) (*ValkeyCache, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		SelectDB:         opts.DB,
		ConnWriteTimeout: 5 * time.Second,
	}
	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	logger.Info("Connected to Valkey", zap.String("address", opts.Address))
	return &ValkeyCache{client: client, logger: logger}, nil
}

// Get retrieves a cached prediction
func (c *ValkeyCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	data, err := c.client.Do(ctx, c.client.B().Get().Key(valkeyKeyPrefix+key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, core.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var entry core.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores a cache entry with a TTL derived from its expiry time
func (c *ValkeyCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	cmd := c.client.B().Set().
		Key(valkeyKeyPrefix + entry.Key).
		Value(string(data)).
		ExSeconds(int64(math.Ceil(ttl.Seconds()))).
		Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *ValkeyCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(valkeyKeyPrefix+key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op, Valkey expires keys itself
func (c *ValkeyCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the client
func (c *ValkeyCache) Stop() {
	c.stopOnce.Do(c.client.Close)
}
