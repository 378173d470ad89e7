package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Fetch error kinds
const (
	KindTimeout     = "timeout"
	KindConnection  = "connection"
	KindForbidden   = "forbidden"
	KindNotFound    = "not_found"
	KindRateLimited = "rate_limited"
	KindHTTPStatus  = "http_status"
	KindOther       = "other"
	KindRenderWait  = "render_wait"
)

// ErrRenderWaitTimeout means a rendered page never showed the element that
// marks its content as loaded.
var ErrRenderWaitTimeout = errors.New("rendered page never showed expected content")

// FetchError indicates the page could not be retrieved at all, either because
// of a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Kind       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(url string, statusCode int, err error) *FetchError {
	if err == nil {
		err = fmt.Errorf("http status %d", statusCode)
	}
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Kind:       errorKind(err, statusCode),
		Err:        err,
	}
}

// IsFetchError reports whether err is, or wraps, a *FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func errorKind(err error, statusCode int) string {
	switch statusCode {
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}
	if statusCode != 0 {
		return KindHTTPStatus
	}
	return KindOther
}
