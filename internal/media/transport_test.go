package media

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fastRetryConfig() retryConfig {
	return retryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func textResponse(code int) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}
}

func TestRetryTransportSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return textResponse(http.StatusOK), nil
	}), fastRetryConfig())

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryTransportRetriesOnRetryableStatus(t *testing.T) {
	calls := 0
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return textResponse(http.StatusServiceUnavailable), nil
		}
		return textResponse(http.StatusOK), nil
	}), fastRetryConfig())

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryTransportStopsOnNonRetryableStatus(t *testing.T) {
	calls := 0
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return textResponse(http.StatusNotFound), nil
	}), fastRetryConfig())

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryTransportExhaustsRetries(t *testing.T) {
	calls := 0
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return textResponse(http.StatusTooManyRequests), nil
	}), fastRetryConfig())

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if calls != 4 {
		t.Fatalf("calls = %d, want 4 (initial + 3 retries)", calls)
	}
}

func TestRetryTransportContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := newRetryTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		cancel()
		return textResponse(http.StatusServiceUnavailable), nil
	}), retryConfig{MaxRetries: 3, InitialDelay: time.Hour, MaxDelay: time.Hour})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", nil)
	_, err := transport.RoundTrip(req)
	if err != context.Canceled {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestBackoffDelayBounded(t *testing.T) {
	transport := newRetryTransport(nil, defaultRetryConfig)
	for attempt := 1; attempt <= 10; attempt++ {
		delay := transport.backoffDelay(attempt)
		max := time.Duration(float64(defaultRetryConfig.MaxDelay) * 1.25)
		if delay < 0 || delay > max {
			t.Fatalf("attempt %d: delay %v outside [0, %v]", attempt, delay, max)
		}
	}
}

func TestIsRetryableStatus(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, code := range retryable {
		if !isRetryableStatus(code) {
			t.Fatalf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 301, 400, 403, 404} {
		if isRetryableStatus(code) {
			t.Fatalf("status %d should not be retryable", code)
		}
	}
}

func TestBrowserTransportHeaders(t *testing.T) {
	var seen http.Header
	transport := &browserTransport{base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header
		return textResponse(http.StatusOK), nil
	})}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if ua := seen.Get("User-Agent"); ua != browserUserAgent {
		t.Fatalf("User-Agent = %q", ua)
	}
	if al := seen.Get("Accept-Language"); al != "en-US,en;q=0.9" {
		t.Fatalf("Accept-Language = %q", al)
	}
}

func TestBrowserTransportPreservesCallerUserAgent(t *testing.T) {
	var seen string
	transport := &browserTransport{base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("User-Agent")
		return textResponse(http.StatusOK), nil
	})}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("User-Agent", "custom-agent/1.0")
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if seen != "custom-agent/1.0" {
		t.Fatalf("User-Agent = %q, want caller value preserved", seen)
	}
}
