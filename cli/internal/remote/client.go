package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moneypit/moneypit/internal/decision"
	"github.com/moneypit/moneypit/pkg/types"
)

const (
	// DefaultTimeout bounds one HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultAPIKeyHeader matches the server's default auth.header.
	DefaultAPIKeyHeader = "X-API-Key"

	// maxAttempts caps tries per call, the first one included.
	maxAttempts = 4

	// maxBodyBytes caps a response body.
	maxBodyBytes = 1 << 20
)

// Diagnostic is one observation the server attached to a report.
type Diagnostic struct {
	Key    string   `json:"key"`
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

// Response is the body of a successful evaluate or simulate call.
type Response struct {
	decision.Report

	Diagnostics []Diagnostic `json:"diagnostics"`
	Generation  uint64       `json:"generation"`
	Cached      bool         `json:"cached"`
}

// Health is the body of GET /api/v1/health.
type Health struct {
	Status              string `json:"status"`
	CoefficientsVersion string `json:"coefficients_version"`
	Generation          uint64 `json:"generation"`
	LoadedAt            string `json:"loaded_at"`
	AlertCount          int    `json:"alert_count"`
}

// StatusError is a non-200 answer from the server.
type StatusError struct {
	Code      int
	Message   string
	RequestID string

	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("server returned %d: %s (request %s)", e.Code, msg, e.RequestID)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, msg)
}

// Options configures a Client. The zero value is usable.
type Options struct {
	// Timeout bounds one HTTP attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// APIKey, when set, is sent in APIKeyHeader on every request.
	APIKey string
	// APIKeyHeader defaults to DefaultAPIKeyHeader.
	APIKeyHeader string
}

// Client talks to one moneypit-server.
type Client struct {
	base  *url.URL
	http  *http.Client
	sleep func(context.Context, time.Duration) error // injectable for tests
}

// New returns a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: server url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("remote: server url %q has no host", baseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	var transport http.RoundTripper = http.DefaultTransport
	if opts.APIKey != "" {
		header := opts.APIKeyHeader
		if header == "" {
			header = DefaultAPIKeyHeader
		}
		transport = &apiKeyRoundTripper{base: transport, header: header, key: opts.APIKey}
	}

	return &Client{
		base:  u,
		http:  &http.Client{Transport: transport, Timeout: timeout},
		sleep: sleepCtx,
	}, nil
}

// Evaluate scores v with neutral controls.
func (c *Client) Evaluate(ctx context.Context, v types.VehicleRequest) (*Response, error) {
	var resp Response
	body := struct {
		Vehicle types.VehicleRequest `json:"vehicle"`
	}{v}
	if err := c.call(ctx, http.MethodPost, "/api/v1/evaluate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Simulate scores v under ctl.
func (c *Client) Simulate(ctx context.Context, v types.VehicleRequest, ctl types.SimulationControls) (*Response, error) {
	var resp Response
	body := struct {
		Vehicle  types.VehicleRequest     `json:"vehicle"`
		Controls types.SimulationControls `json:"controls"`
	}{v, ctl}
	if err := c.call(ctx, http.MethodPost, "/api/v1/simulate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches the server's health summary.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.call(ctx, http.MethodGet, "/api/v1/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// call sends one request, retrying transient failures, and decodes a 200
// body into out.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("remote: encode request: %w", err)
		}
	}

	b := newBackoff()
	for attempt := 1; ; attempt++ {
		body, err := c.do(ctx, method, path, payload, "application/json")
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("remote: decode %s response: %w", path, err)
			}
			return nil
		}
		if attempt == maxAttempts || !retryable(ctx, err) {
			return err
		}

		wait := b.next()
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > wait {
			wait = min(se.RetryAfter, backoffMax)
		}
		slog.Debug("remote: retrying", "path", path, "attempt", attempt, "wait", wait, "err", err)
		if err := c.sleep(ctx, wait); err != nil {
			return fmt.Errorf("remote: %s: %w", path, err)
		}
	}
}

// do performs a single attempt and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, accept string) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("remote: read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, body)
	}
	return body, nil
}

func statusError(resp *http.Response, body []byte) *StatusError {
	se := &StatusError{Code: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
	var e struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	if json.Unmarshal(body, &e) == nil {
		se.Message = e.Error
		if e.RequestID != "" {
			se.RequestID = e.RequestID
		}
	}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			se.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return se
}

// retryable reports whether err is worth another attempt. Request errors
// (4xx other than 429) and coefficient configuration errors (500) are final.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// apiKeyRoundTripper injects the API key header into every outgoing request.
type apiKeyRoundTripper struct {
	base   http.RoundTripper
	header string
	key    string
}

func (t *apiKeyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.header, t.key)
	return t.base.RoundTrip(req)
}
