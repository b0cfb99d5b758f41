package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// Metric families exported by moneypit-server.
const (
	metricVerdicts   = "moneypit_verdicts_total"
	metricCache      = "moneypit_cache_requests_total"
	metricReloads    = "moneypit_coefficient_reloads_total"
	metricGeneration = "moneypit_coefficient_generation"
	metricWSClients  = "moneypit_ws_clients"
)

// Stats summarises a server's /metrics. Counter fields hold raw totals since
// the server started.
type Stats struct {
	// Verdicts counts served verdicts per state (STABLE, BORDERLINE, TIME_BOMB).
	Verdicts map[string]float64 `json:"verdicts"`
	// ByMode counts served verdicts per mode (evaluate, simulate, ws).
	ByMode map[string]float64 `json:"by_mode"`

	CacheHits     float64 `json:"cache_hits"`
	CacheMisses   float64 `json:"cache_misses"`
	ReloadsOK     float64 `json:"reloads_ok"`
	ReloadsFailed float64 `json:"reloads_failed"`

	Generation float64 `json:"generation"`
	WSClients  float64 `json:"ws_clients"`
}

// HitRatio returns hits / lookups, or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return s.CacheHits / total
}

// Stats scrapes /metrics once.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	body, err := c.do(ctx, http.MethodGet, "/metrics", nil, string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err != nil {
		return nil, err
	}
	mfs, err := parseMetrics(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}

	s := &Stats{
		Verdicts:   sumByLabel(mfs[metricVerdicts], "state"),
		ByMode:     sumByLabel(mfs[metricVerdicts], "mode"),
		Generation: sumFamily(mfs[metricGeneration]),
		WSClients:  sumFamily(mfs[metricWSClients]),
	}
	cache := sumByLabel(mfs[metricCache], "result")
	s.CacheHits, s.CacheMisses = cache["hit"], cache["miss"]
	reloads := sumByLabel(mfs[metricReloads], "outcome")
	s.ReloadsOK, s.ReloadsFailed = reloads["ok"], reloads["error"]
	return s, nil
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	parser := expfmt.NewTextParser(model.UTF8Validation)
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns 0 if mf is nil (metric not present in the scrape).
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		total += value(m)
	}
	return total
}

// sumByLabel sums the family's samples grouped by the value of label.
// Samples without the label are grouped under "".
func sumByLabel(mf *dto.MetricFamily, label string) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		key := ""
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label {
				key = lp.GetValue()
				break
			}
		}
		out[key] += value(m)
	}
	return out
}

func value(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	}
	return 0
}
