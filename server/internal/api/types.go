package api

import "github.com/moneypit/moneypit/internal/coeffs"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status              string `json:"status"`
	CoefficientsVersion string `json:"coefficients_version"`
	Generation          uint64 `json:"generation"`
	LoadedAt            string `json:"loaded_at"` // RFC3339
	AlertCount          int    `json:"alert_count"` // firing alerts only
}

// CoefficientsResponse is the payload for GET /api/v1/coefficients.
type CoefficientsResponse struct {
	Version           string  `json:"version"`
	Generation        uint64  `json:"generation"`
	Divisor           float64 `json:"divisor"`
	CascadeMultiplier float64 `json:"cascade_multiplier"`

	Systems      []string                      `json:"systems"`
	Buckets      map[string]map[string]float64 `json:"buckets"`
	CostRanges   map[string]coeffs.CostRange   `json:"cost_ranges"`
	Sellability  map[string]float64            `json:"sellability"`
	Depreciation map[string]float64            `json:"depreciation,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func toCoefficientsResponse(st *coeffs.Store, gen uint64) CoefficientsResponse {
	f := st.File()
	resp := CoefficientsResponse{
		Version:           st.Version(),
		Generation:        gen,
		Divisor:           st.Divisor(),
		CascadeMultiplier: st.CascadeMultiplier(),
		Systems:           st.Systems(),
		Buckets:           make(map[string]map[string]float64, len(f.Failure.Buckets)),
		CostRanges:        f.Failure.CostRanges,
		Sellability:       make(map[string]float64, len(f.Sellability)),
	}
	for b, probs := range f.Failure.Buckets {
		resp.Buckets[string(b)] = probs
	}
	for c, v := range f.Sellability {
		resp.Sellability[string(c)] = v
	}
	if len(f.Depreciation) > 0 {
		resp.Depreciation = make(map[string]float64, len(f.Depreciation))
		for t, v := range f.Depreciation {
			resp.Depreciation[string(t)] = v
		}
	}
	return resp
}
