package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const PollerDefaultInterval = 60 * time.Second

// ChangeEvent is the payload published for every poll that detected at least
// one status change.
type ChangeEvent struct {
	T       int64     `json:"t"`
	Changes ChangeSet `json:"changes"`
}

type DevicePollerParams struct {
	Devices *DeviceService

	// MQTTClient may be nil; detected changes are then only logged.
	MQTTClient MQTTClient
	MQTTTopic  string

	Interval time.Duration

	NowFunc func() time.Time

	Log zerolog.Logger
}

func (p *DevicePollerParams) EnsureDefaults() {
	if p.Interval == 0 {
		p.Interval = PollerDefaultInterval
	}

	if p.NowFunc == nil {
		p.NowFunc = time.Now
	}
}

// DevicePoller owns the previous batch and periodically re-fetches the fleet,
// running change detection across successive polls. A failed poll is logged
// and the previous baseline kept; the next tick is the only retry.
type DevicePoller struct {
	params DevicePollerParams

	previous SnapshotBatch

	log zerolog.Logger
}

func NewDevicePoller(params DevicePollerParams) (*DevicePoller, error) {
	if params.Devices == nil {
		return nil, fmt.Errorf("Devices is nil")
	}

	params.EnsureDefaults()

	return &DevicePoller{params: params, log: params.Log}, nil
}

func (p *DevicePoller) Run(ctx context.Context) error {
	p.log.Info().Dur("interval", p.params.Interval).Msg("poller started")
	defer p.log.Info().Msg("poller stopped")

	ticker := time.NewTicker(p.params.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				p.log.Warn().Err(err).Msg("poll failed")
			}
		}
	}
}

// Poll fetches the fleet once, publishes detected changes and advances the
// baseline batch.
func (p *DevicePoller) Poll(ctx context.Context) error {
	batch, err := p.params.Devices.Devices(ctx, "", false)
	if err != nil {
		return err
	}

	changes := DetectChanges(batch, p.previous)
	p.previous = batch

	if len(changes) == 0 {
		return nil
	}

	p.log.Info().Int("devices_changed", len(changes)).Msg("status changes detected")

	if p.params.MQTTClient == nil {
		return nil
	}

	payload, err := json.Marshal(ChangeEvent{
		T:       p.params.NowFunc().UnixMilli(),
		Changes: changes,
	})
	if err != nil {
		return err
	}

	return p.params.MQTTClient.Publish(p.params.MQTTTopic, 0, false, payload)
}
