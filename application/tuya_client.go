package application

import (
	"context"
	"time"
)

// Credential is a bearer token issued by the upstream API together with its
// advertised lifetime.
type Credential struct {
	Token string
	TTL   time.Duration
}

// TuyaClient talks to the upstream device API. Device calls take the token
// explicitly; credential caching lives in TokenSource, not here.
type TuyaClient interface {
	IssueToken(ctx context.Context) (Credential, error)
	Device(ctx context.Context, deviceID string, token string) (DeviceSnapshot, error)
	Devices(ctx context.Context, deviceIDs []string, token string) (SnapshotBatch, error)
}
