package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moneypit/moneypit/internal/valuation"
	"github.com/moneypit/moneypit/pkg/types"
	"github.com/moneypit/moneypit/server/internal/cache"
	"github.com/moneypit/moneypit/server/internal/hotswap"
	"github.com/moneypit/moneypit/server/internal/metrics"
)

// ErrInvalid marks a request the caller must fix. Other errors are server
// faults, typically a coefficient problem wrapping coeffs.ErrConfig.
var ErrInvalid = errors.New("invalid request")

// Serving modes, used as metric labels.
const (
	ModeEvaluate = "evaluate"
	ModeSimulate = "simulate"
	ModeWS       = "ws"
)

// Service turns validated requests into reports against the active
// coefficient snapshot, consulting the cache first.
type Service struct {
	holder  *hotswap.Holder
	cache   cache.Cache
	metrics *metrics.Metrics
	ttl     time.Duration
}

// New returns a Service. A nil cache disables caching.
func New(h *hotswap.Holder, c cache.Cache, m *metrics.Metrics, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{holder: h, cache: c, metrics: m, ttl: ttl}
}

// Holder returns the snapshot holder the service reads from.
func (s *Service) Holder() *hotswap.Holder { return s.holder }

// Run validates req and returns its report. mode labels metrics only; it
// never changes the result.
func (s *Service) Run(ctx context.Context, mode string, req SimulateRequest) (ReportResponse, error) {
	if err := req.Vehicle.Validate(); err != nil {
		return ReportResponse{}, fmt.Errorf("%w: vehicle: %v", ErrInvalid, err)
	}
	ctl, err := req.Controls.Normalize()
	if err != nil {
		return ReportResponse{}, fmt.Errorf("%w: controls: %v", ErrInvalid, err)
	}

	// One snapshot for the whole request, even if a reload lands mid-way.
	snap := s.holder.Current()

	canonical, err := json.Marshal(SimulateRequest{Vehicle: req.Vehicle, Controls: ctl})
	if err != nil {
		return ReportResponse{}, fmt.Errorf("service: encode request: %w", err)
	}
	key := cache.Key(snap.Fingerprint, "report", canonical)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var resp ReportResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			s.metrics.CacheResult(true)
			s.metrics.Verdict(resp.Verdict.State, mode)
			resp.Cached = true
			// The entry may come from another process; report this one's generation.
			resp.Generation = snap.Generation
			return resp, nil
		}
		slog.Warn("service: discarding undecodable cache entry", "key", key)
	}
	s.metrics.CacheResult(false)

	start := time.Now()
	rep, err := snap.Engine.Report(valuation.Resolve(req.Vehicle), ctl)
	if err != nil {
		return ReportResponse{}, fmt.Errorf("service: evaluate: %w", err)
	}
	s.metrics.ObserveEval(mode, time.Since(start))
	s.metrics.Verdict(rep.Verdict.State, mode)

	resp := ReportResponse{
		Report:      rep,
		Diagnostics: computeDiagnostics(rep),
		Generation:  snap.Generation,
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			slog.Warn("service: cache set failed", "err", err)
		}
	}
	return resp, nil
}

// Evaluate is Run with neutral controls.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (ReportResponse, error) {
	return s.Run(ctx, ModeEvaluate, SimulateRequest{Vehicle: req.Vehicle, Controls: types.SimulationControls{}})
}
