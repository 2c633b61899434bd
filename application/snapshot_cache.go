package application

import (
	"context"
	"sync"
	"time"
)

const SnapshotCacheDefaultTTL = 60 * time.Second

// SnapshotCache holds the most recent batch of device snapshots. Get returns
// ErrCacheMiss when forced, empty, or stale. Implementations hand out copies;
// the live state is never exposed.
//
// PutOne against an empty cache is a no-op: a single-device refresh cannot
// seed the cache, only amend an existing batch.
type SnapshotCache interface {
	Get(ctx context.Context, forceRefresh bool) (SnapshotBatch, error)
	Put(ctx context.Context, batch SnapshotBatch) error
	PutOne(ctx context.Context, snapshot DeviceSnapshot) error
}

type MemorySnapshotCacheParams struct {
	TTL time.Duration

	NowFunc func() time.Time
}

func (p *MemorySnapshotCacheParams) EnsureDefaults() {
	if p.TTL == 0 {
		p.TTL = SnapshotCacheDefaultTTL
	}

	if p.NowFunc == nil {
		p.NowFunc = time.Now
	}
}

// MemorySnapshotCache is the in-process SnapshotCache. The upstream API is
// rate-limited and billed per call, so a slightly stale batch within the TTL
// is served instead of re-fetching.
type MemorySnapshotCache struct {
	params MemorySnapshotCacheParams

	mu        sync.Mutex
	batch     SnapshotBatch
	writtenAt time.Time
}

func NewMemorySnapshotCache(params MemorySnapshotCacheParams) *MemorySnapshotCache {
	params.EnsureDefaults()

	return &MemorySnapshotCache{params: params}
}

func (c *MemorySnapshotCache) Get(ctx context.Context, forceRefresh bool) (SnapshotBatch, error) {
	if forceRefresh {
		return nil, ErrCacheMiss
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.batch == nil {
		return nil, ErrCacheMiss
	}

	if c.params.NowFunc().Sub(c.writtenAt) >= c.params.TTL {
		return nil, ErrCacheMiss
	}

	return c.batch.Clone(), nil
}

func (c *MemorySnapshotCache) Put(ctx context.Context, batch SnapshotBatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batch = batch.Clone()
	c.writtenAt = c.params.NowFunc()
	return nil
}

func (c *MemorySnapshotCache) PutOne(ctx context.Context, snapshot DeviceSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.batch == nil {
		return nil
	}

	c.batch = replaceOrAppend(c.batch, snapshot)
	c.writtenAt = c.params.NowFunc()
	return nil
}

// replaceOrAppend swaps the snapshot matching by id, or appends it when the
// batch has no entry for that device.
func replaceOrAppend(batch SnapshotBatch, snapshot DeviceSnapshot) SnapshotBatch {
	for i, s := range batch {
		if s.ID == snapshot.ID {
			batch[i] = snapshot.Clone()
			return batch
		}
	}
	return append(batch, snapshot.Clone())
}

var _ SnapshotCache = &MemorySnapshotCache{}
