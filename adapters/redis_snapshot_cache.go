package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tuya-device-gateway/application"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"
)

const RedisSnapshotCacheDefaultKey = "tuya:devices:snapshot"

// redisSnapshotEntry is the stored value: the batch plus its write stamp.
// Staleness is computed on read, the key itself never expires.
type redisSnapshotEntry struct {
	Batch     application.SnapshotBatch `json:"batch"`
	WrittenAt int64                     `json:"written_at"`
}

type RedisSnapshotCacheParams struct {
	Pool *redis.Pool

	Key string
	TTL time.Duration

	NowFunc func() time.Time

	Log zerolog.Logger
}

func (p *RedisSnapshotCacheParams) EnsureDefaults() {
	if p.Key == "" {
		p.Key = RedisSnapshotCacheDefaultKey
	}

	if p.TTL == 0 {
		p.TTL = application.SnapshotCacheDefaultTTL
	}

	if p.NowFunc == nil {
		p.NowFunc = time.Now
	}
}

// RedisSnapshotCache is the shared-store SnapshotCache for multi-process
// deployments. Updates are last-writer-wins; concurrent refreshes of the
// same device may race and the later write sticks.
type RedisSnapshotCache struct {
	params RedisSnapshotCacheParams

	log zerolog.Logger
}

func NewRedisSnapshotCache(params RedisSnapshotCacheParams) (*RedisSnapshotCache, error) {
	if params.Pool == nil {
		return nil, fmt.Errorf("Pool is nil")
	}

	params.EnsureDefaults()

	return &RedisSnapshotCache{params: params, log: params.Log}, nil
}

func (c *RedisSnapshotCache) Get(ctx context.Context, forceRefresh bool) (application.SnapshotBatch, error) {
	if forceRefresh {
		return nil, application.ErrCacheMiss
	}

	entry, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	age := c.params.NowFunc().UnixMilli() - entry.WrittenAt
	if age >= c.params.TTL.Milliseconds() {
		return nil, application.ErrCacheMiss
	}

	return entry.Batch, nil
}

func (c *RedisSnapshotCache) Put(ctx context.Context, batch application.SnapshotBatch) error {
	return c.store(ctx, redisSnapshotEntry{
		Batch:     batch,
		WrittenAt: c.params.NowFunc().UnixMilli(),
	})
}

func (c *RedisSnapshotCache) PutOne(ctx context.Context, snapshot application.DeviceSnapshot) error {
	entry, err := c.load(ctx)
	if err != nil {
		if errors.Is(err, application.ErrCacheMiss) {
			// A single-device refresh cannot seed an empty cache.
			return nil
		}
		return err
	}

	replaced := false
	for i, s := range entry.Batch {
		if s.ID == snapshot.ID {
			entry.Batch[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		entry.Batch = append(entry.Batch, snapshot)
	}

	entry.WrittenAt = c.params.NowFunc().UnixMilli()
	return c.store(ctx, entry)
}

func (c *RedisSnapshotCache) load(ctx context.Context) (redisSnapshotEntry, error) {
	conn, err := c.params.Pool.GetContext(ctx)
	if err != nil {
		return redisSnapshotEntry{}, err
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", c.params.Key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return redisSnapshotEntry{}, application.ErrCacheMiss
		}
		return redisSnapshotEntry{}, err
	}

	var entry redisSnapshotEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// An unreadable entry behaves like an empty cache; the next Put
		// overwrites it.
		c.log.Warn().Err(err).Msg("discarding undecodable cache entry")
		return redisSnapshotEntry{}, application.ErrCacheMiss
	}

	return entry, nil
}

func (c *RedisSnapshotCache) store(ctx context.Context, entry redisSnapshotEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	conn, err := c.params.Pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", c.params.Key, data)
	return err
}

var _ application.SnapshotCache = &RedisSnapshotCache{}
