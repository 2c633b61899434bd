package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type DeviceServiceParams struct {
	Client TuyaClient
	Tokens *TokenSource
	Cache  SnapshotCache

	// AllowedDeviceIDs is the static allow-list; it is also the fleet
	// queried when no particular device is requested.
	AllowedDeviceIDs []string

	Log zerolog.Logger
}

// DeviceService is the gateway between inbound callers and the upstream API:
// it enforces the allow-list, serves from the snapshot cache when fresh and
// falls through to a signed live fetch otherwise.
type DeviceService struct {
	params DeviceServiceParams

	allowed map[string]struct{}

	log zerolog.Logger
}

func NewDeviceService(params DeviceServiceParams) (*DeviceService, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("Client is nil")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("Tokens is nil")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("Cache is nil")
	}
	if len(params.AllowedDeviceIDs) == 0 {
		return nil, fmt.Errorf("AllowedDeviceIDs is empty")
	}

	allowed := make(map[string]struct{}, len(params.AllowedDeviceIDs))
	for _, id := range params.AllowedDeviceIDs {
		allowed[id] = struct{}{}
	}

	return &DeviceService{params: params, allowed: allowed, log: params.Log}, nil
}

// Devices returns the current batch of snapshots. With a deviceID it narrows
// the result to that device; with forceRefresh it bypasses the cache.
func (s *DeviceService) Devices(ctx context.Context, deviceID string, forceRefresh bool) (SnapshotBatch, error) {
	if deviceID != "" {
		if _, ok := s.allowed[deviceID]; !ok {
			return nil, fmt.Errorf("device %q: %w", deviceID, ErrDeviceNotAllowed)
		}
	}

	targetIDs := s.params.AllowedDeviceIDs
	if deviceID != "" {
		targetIDs = []string{deviceID}
	}

	if batch, ok := s.cached(ctx, deviceID, forceRefresh); ok {
		return batch, nil
	}

	token, err := s.params.Tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := s.fetch(ctx, targetIDs, token)
	if err != nil {
		return nil, err
	}

	s.store(ctx, deviceID, forceRefresh, batch)

	return batch, nil
}

// cached serves from the snapshot cache. A single-device request whose id is
// missing from the cached batch reports a miss so the caller fetches live
// rather than erroring.
func (s *DeviceService) cached(ctx context.Context, deviceID string, forceRefresh bool) (SnapshotBatch, bool) {
	batch, err := s.params.Cache.Get(ctx, forceRefresh)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			// A broken cache backend must not take the gateway down;
			// treat it as a miss and fetch live.
			s.log.Warn().Err(err).Msg("snapshot cache read failed")
		}
		return nil, false
	}

	if deviceID == "" {
		return batch, true
	}

	snapshot, ok := batch.Find(deviceID)
	if !ok {
		return nil, false
	}
	return SnapshotBatch{snapshot}, true
}

// fetch issues one upstream call for the target ids, batched whenever more
// than one device is requested so the call count stays constant per poll.
func (s *DeviceService) fetch(ctx context.Context, targetIDs []string, token string) (SnapshotBatch, error) {
	if len(targetIDs) == 1 {
		snapshot, err := s.params.Client.Device(ctx, targetIDs[0], token)
		if err != nil {
			return nil, err
		}
		return SnapshotBatch{snapshot}, nil
	}

	return s.params.Client.Devices(ctx, targetIDs, token)
}

// store writes fetched data back: a full-fleet fetch replaces the batch, a
// force-refreshed single device is patched in. A plain single-device miss is
// not written back, matching the cache's whole-batch timestamp semantics.
func (s *DeviceService) store(ctx context.Context, deviceID string, forceRefresh bool, batch SnapshotBatch) {
	var err error
	switch {
	case deviceID == "":
		err = s.params.Cache.Put(ctx, batch)
	case forceRefresh && len(batch) == 1:
		err = s.params.Cache.PutOne(ctx, batch[0])
	}

	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot cache write failed")
	}
}
