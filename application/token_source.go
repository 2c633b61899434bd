package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TokenMinSafetyMargin is the smallest allowed gap between the stored expiry
// and the upstream-advertised one, so in-flight requests never race expiry.
const TokenMinSafetyMargin = 60 * time.Second

type TokenSourceParams struct {
	Client TuyaClient

	SafetyMargin time.Duration

	NowFunc func() time.Time

	Log zerolog.Logger
}

func (p *TokenSourceParams) EnsureDefaults() {
	if p.SafetyMargin < TokenMinSafetyMargin {
		p.SafetyMargin = TokenMinSafetyMargin
	}

	if p.NowFunc == nil {
		p.NowFunc = time.Now
	}
}

// TokenSource caches a single upstream credential and reissues it once the
// absolute expiry has passed. A failed refresh leaves the previous state
// untouched and propagates the error; retry policy belongs to callers.
type TokenSource struct {
	params TokenSourceParams

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	log zerolog.Logger
}

func NewTokenSource(params TokenSourceParams) (*TokenSource, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("Client is nil")
	}

	params.EnsureDefaults()

	return &TokenSource{params: params, log: params.Log}, nil
}

// Token returns a valid access token, issuing a new one when the cached
// credential is absent or expired.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.params.NowFunc()
	if t.token != "" && now.Before(t.expiresAt) {
		return t.token, nil
	}

	cred, err := t.params.Client.IssueToken(ctx)
	if err != nil {
		return "", err
	}

	t.token = cred.Token
	t.expiresAt = now.Add(cred.TTL - t.params.SafetyMargin)

	t.log.Debug().
		Time("expires_at", t.expiresAt).
		Msg("access token refreshed")

	return t.token, nil
}
