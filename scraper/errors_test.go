package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "context timeout", err: context.DeadlineExceeded, expected: KindTimeout},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, expected: KindTimeout},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: KindConnection},
		{name: "forbidden", statusCode: http.StatusForbidden, expected: KindForbidden},
		{name: "not found", statusCode: http.StatusNotFound, expected: KindNotFound},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, expected: KindRateLimited},
		{name: "server error", statusCode: http.StatusBadGateway, expected: KindHTTPStatus},
		{name: "other", err: errors.New("boom"), expected: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorKind(tt.err, tt.statusCode))
		})
	}
}

func TestFetchErrorWrapping(t *testing.T) {
	err := newFetchError("https://example.com", http.StatusServiceUnavailable, nil)
	wrapped := fmt.Errorf("resolve: %w", err)

	assert.True(t, IsFetchError(wrapped))
	assert.False(t, IsFetchError(errors.New("plain")))

	var fe *FetchError
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.Contains(t, fe.Error(), "status 503")
}
