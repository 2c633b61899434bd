package application

import "fmt"

var (
	// ErrNotAuthorized is returned when the caller has no valid session.
	ErrNotAuthorized = fmt.Errorf("not authorized")

	// ErrDeviceNotAllowed is returned for device ids outside the allow-list.
	ErrDeviceNotAllowed = fmt.Errorf("device not allowed")

	// ErrCacheMiss signals that a cache holds no fresh entry. It never
	// reaches API callers; the device service falls through to a live fetch.
	ErrCacheMiss = fmt.Errorf("cache miss")
)

// UpstreamError wraps a failed call against the upstream API, either a
// transport failure or a success=false envelope.
type UpstreamError struct {
	Op  string
	Msg string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upstream %s: %s", e.Op, e.Msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
