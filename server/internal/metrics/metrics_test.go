package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/moneypit/moneypit/pkg/types"
)

// family returns the gathered family called name, or nil.
func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := m.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

// counterValue returns the counter in mf whose labels include all of want.
func counterValue(mf *dto.MetricFamily, want map[string]string) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		match := 0
		for _, lp := range m.GetLabel() {
			if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
				match++
			}
		}
		if match == len(want) {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestVerdict(t *testing.T) {
	m := New()
	m.Verdict(types.Stable, "evaluate")
	m.Verdict(types.Stable, "evaluate")
	m.Verdict(types.TimeBomb, "simulate")

	mf := family(t, m, VerdictsTotal)
	if got := counterValue(mf, map[string]string{"state": "STABLE", "mode": "evaluate"}); got != 2 {
		t.Errorf("STABLE/evaluate: got %v, want 2", got)
	}
	if got := counterValue(mf, map[string]string{"state": "TIME_BOMB", "mode": "simulate"}); got != 1 {
		t.Errorf("TIME_BOMB/simulate: got %v, want 1", got)
	}
}

func TestCacheResult(t *testing.T) {
	m := New()
	m.CacheResult(true)
	m.CacheResult(false)
	m.CacheResult(false)

	mf := family(t, m, CacheRequestsTotal)
	if got := counterValue(mf, map[string]string{"result": "hit"}); got != 1 {
		t.Errorf("hit: got %v, want 1", got)
	}
	if got := counterValue(mf, map[string]string{"result": "miss"}); got != 2 {
		t.Errorf("miss: got %v, want 2", got)
	}
}

func TestReload(t *testing.T) {
	m := New()
	m.Reload(nil, 2)
	m.Reload(errors.New("bad divisor"), 0)

	mf := family(t, m, ReloadsTotal)
	if got := counterValue(mf, map[string]string{"outcome": "ok"}); got != 1 {
		t.Errorf("ok: got %v, want 1", got)
	}
	if got := counterValue(mf, map[string]string{"outcome": "error"}); got != 1 {
		t.Errorf("error: got %v, want 1", got)
	}

	// A failed reload leaves the generation gauge alone.
	g := family(t, m, Generation)
	if g == nil || g.GetMetric()[0].GetGauge().GetValue() != 2 {
		t.Errorf("generation gauge: got %v, want 2", g)
	}
}

func TestObserveEval(t *testing.T) {
	m := New()
	m.ObserveEval("evaluate", 3*time.Millisecond)
	m.ObserveEval("evaluate", time.Millisecond)

	mf := family(t, m, EvalDuration)
	if mf == nil {
		t.Fatal("duration histogram not gathered")
	}
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count: got %d, want 2", h.GetSampleCount())
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	m := New()
	m.Verdict(types.Borderline, "ws")
	m.SetWSClients(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`moneypit_verdicts_total{mode="ws",state="BORDERLINE"} 1`,
		"moneypit_ws_clients 3",
		"go_goroutines",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
