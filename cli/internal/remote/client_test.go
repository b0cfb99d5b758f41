package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moneypit/moneypit/pkg/types"
)

const reportBody = `{
  "input": {"type":"sedan","mileage":160000,"repair_quote":3000,"current_value":10000,
            "quote_estimated":false,"value_estimated":false},
  "controls": {},
  "verdict": {"state":"TIME_BOMB","narrative":"n","hint":{"rf":451.875,"rm":250,"label":"DEEP_PIT"}},
  "fixing": {"repair_points":150,"future_risk_points":301.875,"pain_points":0,"total":451.875},
  "moving": {"friction_points":100,"liquidity_points":150,"total":250},
  "asset_bleed": 2800,
  "line_items": [{"label":"Repair quote","amount":"$3,000","description":"d","is_saving":false}],
  "coefficients_version": "reference-2024.1",
  "diagnostics": [{"key":"money_pit","level":"critical","title":"Repairs outweigh moving on","detail":"d","value":201.875}],
  "generation": 4,
  "cached": true
}`

func ptr(v float64) *float64 { return &v }

var sedan = types.VehicleRequest{Type: types.Sedan, Mileage: 160_000, RepairQuote: ptr(3_000), CurrentValue: ptr(10_000)}

// newTestClient returns a Client for srv whose sleeps are recorded, not slept.
func newTestClient(t *testing.T, srv *httptest.Server, opts Options) (*Client, *[]time.Duration) {
	t.Helper()
	c, err := New(srv.URL, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var mu sync.Mutex
	waits := []time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		waits = append(waits, d)
		mu.Unlock()
		return nil
	}
	return c, &waits
}

func TestClient_Evaluate(t *testing.T) {
	var gotBody map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/evaluate" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
		io.WriteString(w, reportBody)            //nolint:errcheck
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{})
	resp, err := c.Evaluate(context.Background(), sedan)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, ok := gotBody["controls"]; ok {
		t.Error("evaluate body must not carry controls")
	}
	if _, ok := gotBody["vehicle"]; !ok {
		t.Error("evaluate body missing vehicle")
	}
	if resp.Verdict.State != types.TimeBomb {
		t.Errorf("state: got %q, want TIME_BOMB", resp.Verdict.State)
	}
	if resp.Fixing.RepairPoints != 150 || resp.AssetBleed != 2800 {
		t.Errorf("report: repair_points %d, asset_bleed %v", resp.Fixing.RepairPoints, resp.AssetBleed)
	}
	if resp.Generation != 4 || !resp.Cached {
		t.Errorf("meta: generation %d cached %v, want 4 true", resp.Generation, resp.Cached)
	}
	if len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Key != "money_pit" {
		t.Errorf("diagnostics: got %+v", resp.Diagnostics)
	}
}

func TestClient_SimulateSendsControls(t *testing.T) {
	var got struct {
		Vehicle  types.VehicleRequest     `json:"vehicle"`
		Controls types.SimulationControls `json:"controls"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/simulate" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		io.WriteString(w, reportBody)        //nolint:errcheck
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{})
	ctl := types.SimulationControls{Mobility: types.MobilityNeedsTow, RetentionMonths: 12}
	if _, err := c.Simulate(context.Background(), sedan, ctl); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if got.Controls != ctl {
		t.Errorf("controls: got %+v, want %+v", got.Controls, ctl)
	}
	if got.Vehicle.Mileage != 160_000 {
		t.Errorf("vehicle.mileage: got %d", got.Vehicle.Mileage)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, reportBody) //nolint:errcheck
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv, Options{})
	if _, err := c.Evaluate(context.Background(), sedan); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls: got %d, want 3", calls.Load())
	}
	if len(*waits) != 2 {
		t.Errorf("waits: got %v, want 2 backoff sleeps", *waits)
	}
}

func TestClient_RetryAfterStretchesWait(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, reportBody) //nolint:errcheck
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv, Options{})
	if _, err := c.Evaluate(context.Background(), sedan); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 2*time.Second {
		t.Errorf("waits: got %v, want [2s]", *waits)
	}
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, Options{})
	_, err := c.Evaluate(context.Background(), sedan)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("err: got %v, want *StatusError 502", err)
	}
	if calls.Load() != maxAttempts {
		t.Errorf("calls: got %d, want %d", calls.Load(), maxAttempts)
	}
}

func TestClient_PermanentErrorsNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("X-Request-ID", "req-1")
			w.WriteHeader(code)
			io.WriteString(w, `{"error":"unknown vehicle type \"hovercraft\"","request_id":"req-1"}`) //nolint:errcheck
		}))

		c, waits := newTestClient(t, srv, Options{})
		_, err := c.Evaluate(context.Background(), sedan)
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("%d: err %v is not a *StatusError", code, err)
		}
		if se.Code != code || se.RequestID != "req-1" || se.Message != `unknown vehicle type "hovercraft"` {
			t.Errorf("%d: got %+v", code, se)
		}
		if calls.Load() != 1 || len(*waits) != 0 {
			t.Errorf("%d: calls %d waits %v, want a single attempt", code, calls.Load(), *waits)
		}
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, waits := newTestClient(t, srv, Options{Timeout: time.Second})
	srv.Close()

	if _, err := c.Health(context.Background()); err == nil {
		t.Fatal("expected error for a closed server, got nil")
	}
	if len(*waits) != maxAttempts-1 {
		t.Errorf("waits: got %d, want %d retries", len(*waits), maxAttempts-1)
	}
}

func TestClient_CancelledContextStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	if _, err := c.Evaluate(ctx, sedan); !errors.Is(err, context.Canceled) {
		t.Errorf("err: got %v, want context.Canceled", err)
	}
}

func TestClient_APIKeyInjected(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		header string
	}{
		{"default header", Options{APIKey: "k1"}, DefaultAPIKeyHeader},
		{"custom header", Options{APIKey: "k1", APIKeyHeader: "X-Moneypit-Key"}, "X-Moneypit-Key"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get(tc.header); got != "k1" {
					t.Errorf("%s: got %q, want k1", tc.header, got)
				}
				io.WriteString(w, `{"status":"ok","coefficients_version":"v","generation":1}`) //nolint:errcheck
			}))
			defer srv.Close()

			c, _ := newTestClient(t, srv, tc.opts)
			h, err := c.Health(context.Background())
			if err != nil {
				t.Fatalf("Health: %v", err)
			}
			if h.Status != "ok" || h.Generation != 1 {
				t.Errorf("health: got %+v", h)
			}
		})
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"localhost:8080", "ftp://example.com", "http://", "://bad"} {
		if _, err := New(u, Options{}); err == nil {
			t.Errorf("New(%q): expected error, got nil", u)
		}
	}
	if _, err := New("http://localhost:8080/", Options{}); err != nil {
		t.Errorf("New with trailing slash: %v", err)
	}
}

func TestStatusError_Message(t *testing.T) {
	se := &StatusError{Code: http.StatusTooManyRequests}
	if se.Error() != "server returned 429: Too Many Requests" {
		t.Errorf("Error(): got %q", se.Error())
	}
	se = &StatusError{Code: 400, Message: "bad", RequestID: "abc"}
	if se.Error() != "server returned 400: bad (request abc)" {
		t.Errorf("Error(): got %q", se.Error())
	}
}

func TestBackoff_NeverExceedsMax(t *testing.T) {
	b := newBackoff()
	first := b.next()
	if first > backoffInitial*2 {
		t.Errorf("first backoff too large: %v", first)
	}
	for i := 0; i < 50; i++ {
		d := b.next()
		// With jitter, max is backoffMax * 1.25
		if d > backoffMax*5/4 {
			t.Errorf("backoff[%d] = %v, exceeds 1.25×max", i, d)
		}
	}
}
