package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"tuya-device-gateway/application"

	"github.com/rs/zerolog"
)

const TuyaClientDefaultTimeout = 10 * time.Second

// Envelope is the response wrapper every upstream call returns. success=false
// is a hard error regardless of HTTP status.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	T       int64  `json:"t"`
	TID     string `json:"tid"`
	Result  T      `json:"result"`
}

type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireTime   int64  `json:"expire_time"`
	UID          string `json:"uid"`
}

type DeviceResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
	Icon   string `json:"icon"`
	Status []struct {
		Code  string `json:"code"`
		Value any    `json:"value"`
	} `json:"status"`
}

type TuyaClientParams struct {
	Endpoint string
	Signer   *TuyaSigner

	HTTPClient *http.Client

	Log zerolog.Logger
}

func (p *TuyaClientParams) EnsureDefaults() {
	if p.HTTPClient == nil {
		p.HTTPClient = &http.Client{Timeout: TuyaClientDefaultTimeout}
	}
}

// TuyaClient implements application.TuyaClient over plain HTTP, signing each
// request itself.
type TuyaClient struct {
	params TuyaClientParams

	log zerolog.Logger
}

func NewTuyaClient(params TuyaClientParams) (*TuyaClient, error) {
	if params.Endpoint == "" {
		return nil, fmt.Errorf("Endpoint is empty")
	}
	if params.Signer == nil {
		return nil, fmt.Errorf("Signer is nil")
	}

	params.EnsureDefaults()

	return &TuyaClient{params: params, log: params.Log}, nil
}

func (t *TuyaClient) IssueToken(ctx context.Context) (application.Credential, error) {
	var env Envelope[TokenResult]
	if err := t.get(ctx, "/v1.0/token?grant_type=1", "", &env); err != nil {
		return application.Credential{}, &application.UpstreamError{Op: "token", Err: err}
	}

	if !env.Success {
		return application.Credential{}, &application.UpstreamError{Op: "token", Msg: env.Msg}
	}

	return application.Credential{
		Token: env.Result.AccessToken,
		TTL:   time.Duration(env.Result.ExpireTime) * time.Second,
	}, nil
}

func (t *TuyaClient) Device(ctx context.Context, deviceID string, token string) (application.DeviceSnapshot, error) {
	path := "/v1.0/devices/" + url.PathEscape(deviceID)

	var env Envelope[DeviceResult]
	if err := t.get(ctx, path, token, &env); err != nil {
		return application.DeviceSnapshot{}, &application.UpstreamError{Op: "device " + deviceID, Err: err}
	}

	if !env.Success {
		return application.DeviceSnapshot{}, &application.UpstreamError{Op: "device " + deviceID, Msg: env.Msg}
	}

	return tuyaDeviceToSnapshot(env.Result, env.Success, env.T, env.TID), nil
}

// Devices fetches the whole fleet in one call. The upstream response order is
// undefined; results are reordered to match deviceIDs and unrequested ids are
// dropped. One bad id fails the entire batch, there is no partial success.
func (t *TuyaClient) Devices(ctx context.Context, deviceIDs []string, token string) (application.SnapshotBatch, error) {
	path := "/v1.0/devices?device_ids=" + url.QueryEscape(strings.Join(deviceIDs, ","))

	var env Envelope[[]DeviceResult]
	if err := t.get(ctx, path, token, &env); err != nil {
		return nil, &application.UpstreamError{Op: "devices", Err: err}
	}

	if !env.Success {
		return nil, &application.UpstreamError{Op: "devices", Msg: env.Msg}
	}

	byID := make(map[string]DeviceResult, len(env.Result))
	for _, device := range env.Result {
		byID[device.ID] = device
	}

	var batch application.SnapshotBatch
	for _, id := range deviceIDs {
		device, ok := byID[id]
		if !ok {
			continue
		}
		batch = append(batch, tuyaDeviceToSnapshot(device, env.Success, env.T, env.TID))
	}

	return batch, nil
}

func (t *TuyaClient) get(ctx context.Context, path string, token string, out any) error {
	sig := t.params.Signer.Sign(http.MethodGet, path, nil, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.params.Endpoint+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("client_id", t.params.Signer.params.ClientID)
	req.Header.Set("sign", sig.Sign)
	req.Header.Set("t", strconv.FormatInt(sig.Timestamp, 10))
	req.Header.Set("sign_method", "HMAC-SHA256")
	if token != "" {
		req.Header.Set("access_token", token)
	}

	t.log.Debug().Str("path", path).Msg("upstream request")

	resp, err := t.params.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}

	return nil
}

func tuyaDeviceToSnapshot(device DeviceResult, success bool, t int64, tid string) application.DeviceSnapshot {
	snapshot := application.DeviceSnapshot{
		ID:      device.ID,
		Name:    device.Name,
		Online:  device.Online,
		Icon:    device.Icon,
		Success: success,
		T:       t,
		TID:     tid,
	}

	for _, status := range device.Status {
		snapshot.Status = append(snapshot.Status, application.StatusEntry{
			Code:  status.Code,
			Value: status.Value,
		})
	}

	return snapshot
}

var _ application.TuyaClient = &TuyaClient{}
