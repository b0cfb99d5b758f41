package service

import (
	"github.com/moneypit/moneypit/internal/decision"
	"github.com/moneypit/moneypit/pkg/types"
)

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	Vehicle types.VehicleRequest `json:"vehicle"`
}

// SimulateRequest is the body of POST /api/v1/simulate and of every frame a
// WebSocket simulator client sends.
type SimulateRequest struct {
	Vehicle  types.VehicleRequest     `json:"vehicle"`
	Controls types.SimulationControls `json:"controls"`
}

// ReportResponse is a decision.Report plus serving metadata.
type ReportResponse struct {
	decision.Report

	Diagnostics []DiagnosticHint `json:"diagnostics"`

	// Generation identifies the coefficient snapshot that produced the report.
	Generation uint64 `json:"generation"`
	// Cached is true when the report was served from the cache.
	Cached bool `json:"cached"`
}

// DiagnosticHint is one plain-language observation about what drove a
// verdict. Clients show Title as a chip and Detail on expansion.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "info" | "warning" | "critical".
	Level string `json:"level"`
	// Title is a short label (at most five words).
	Title  string `json:"title"`
	Detail string `json:"detail"`
	// Value is an optional number the hint refers to.
	Value *float64 `json:"value,omitempty"`
}
