package adapters

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"tuya-device-gateway/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Authorizer decides whether an inbound request carries a valid session.
// Session management itself lives outside the gateway; this is the boolean
// gate in front of it.
type Authorizer interface {
	Authorize(r *http.Request) bool
}

// StaticTokenAuthorizer accepts requests bearing the configured API token,
// either as "Authorization: Bearer <token>" or an X-Api-Token header.
type StaticTokenAuthorizer struct {
	token string
}

func NewStaticTokenAuthorizer(token string) (*StaticTokenAuthorizer, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &StaticTokenAuthorizer{token: token}, nil
}

func (a *StaticTokenAuthorizer) Authorize(r *http.Request) bool {
	presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if presented == r.Header.Get("Authorization") {
		presented = r.Header.Get("X-Api-Token")
	}

	return subtle.ConstantTimeCompare([]byte(presented), []byte(a.token)) == 1
}

// AllowAllAuthorizer accepts everything. Only for deployments where access
// control sits in front of the gateway, or local development.
type AllowAllAuthorizer struct{}

func (AllowAllAuthorizer) Authorize(*http.Request) bool { return true }

var (
	_ Authorizer = &StaticTokenAuthorizer{}
	_ Authorizer = AllowAllAuthorizer{}
)

type DeviceHandlerParams struct {
	Devices    *application.DeviceService
	Authorizer Authorizer

	// Development unredacts upstream failure messages in 500 responses.
	Development bool

	Log zerolog.Logger
}

// DeviceHandler is the inbound HTTP surface: one read endpoint returning the
// current snapshot batch as a JSON array.
type DeviceHandler struct {
	params DeviceHandlerParams

	log zerolog.Logger
}

func NewDeviceHandler(params DeviceHandlerParams) (*DeviceHandler, error) {
	if params.Devices == nil {
		return nil, fmt.Errorf("Devices is nil")
	}
	if params.Authorizer == nil {
		return nil, fmt.Errorf("Authorizer is nil")
	}

	return &DeviceHandler{params: params, log: params.Log}, nil
}

func (h *DeviceHandler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(h.logMiddleware)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/devices", h.handleDevices)

	return r
}

func (h *DeviceHandler) handleDevices(w http.ResponseWriter, r *http.Request) {
	if !h.params.Authorizer.Authorize(r) {
		writeError(w, http.StatusUnauthorized, application.ErrNotAuthorized.Error())
		return
	}

	deviceID := r.URL.Query().Get("deviceId")
	forceRefresh := r.URL.Query().Get("refresh") == "true"

	batch, err := h.params.Devices.Devices(r.Context(), deviceID, forceRefresh)
	if err != nil {
		h.writeDevicesError(w, err)
		return
	}

	if batch == nil {
		batch = application.SnapshotBatch{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(batch)
}

// writeDevicesError is the single place internal error kinds become HTTP
// statuses. Upstream messages stay redacted outside development.
func (h *DeviceHandler) writeDevicesError(w http.ResponseWriter, err error) {
	if errors.Is(err, application.ErrDeviceNotAllowed) {
		writeError(w, http.StatusForbidden, "device access denied")
		return
	}

	h.log.Error().Err(err).Msg("device request failed")

	msg := "failed to fetch device data"
	if h.params.Development {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func (h *DeviceHandler) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		h.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
