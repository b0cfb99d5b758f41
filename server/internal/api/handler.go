package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/moneypit/moneypit/server/internal/alerts"
	"github.com/moneypit/moneypit/server/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	svc     *service.Service
	limiter *Limiter
	alerts  *alerts.Engine
	mux     *http.ServeMux
}

// New creates a Handler and registers all routes. A nil limiter disables
// rate limiting; a nil alert engine reports no alerts.
func New(svc *service.Service, lim *Limiter, al *alerts.Engine) http.Handler {
	h := &Handler{svc: svc, limiter: lim, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/coefficients", h.coefficients)
	h.mux.HandleFunc("/api/v1/evaluate", h.evaluate)
	h.mux.HandleFunc("/api/v1/simulate", h.simulate)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		w.Header().Set("Retry-After", "1")
		jsonErr(w, r, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	h.mux.ServeHTTP(w, r)
}

// RequestID returns the correlation ID assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: the active coefficient snapshot.
// Status is "degraded" while a reload alert is firing: the server still
// answers, but from coefficients older than the file on disk.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := h.svc.Holder().Current()
	status := "ok"
	var count int
	if h.alerts != nil {
		count = h.alerts.Firing()
		if count > 0 {
			status = "degraded"
		}
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:              status,
		CoefficientsVersion: snap.Store.Version(),
		Generation:          snap.Generation,
		LoadedAt:            snap.LoadedAt.UTC().Format(time.RFC3339),
		AlertCount:          count,
	})
}

// listAlerts returns GET /api/v1/alerts: firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	list := []*alerts.Alert{}
	if h.alerts != nil {
		list = h.alerts.Active()
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FiredAt.After(list[j].FiredAt) })
	jsonResp(w, http.StatusOK, list)
}

// coefficients returns GET /api/v1/coefficients: the active tables.
func (h *Handler) coefficients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := h.svc.Holder().Current()
	jsonResp(w, http.StatusOK, toCoefficientsResponse(snap.Store, snap.Generation))
}

// evaluate handles POST /api/v1/evaluate.
func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req service.EvaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonErr(w, r, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.Evaluate(r.Context(), req)
	h.respond(w, r, resp, err)
}

// simulate handles POST /api/v1/simulate.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req service.SimulateRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonErr(w, r, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.Run(r.Context(), service.ModeSimulate, req)
	h.respond(w, r, resp, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, resp service.ReportResponse, err error) {
	switch {
	case err == nil:
		jsonResp(w, http.StatusOK, resp)
	case errors.Is(err, service.ErrInvalid):
		jsonErr(w, r, http.StatusBadRequest, err.Error())
	default:
		slog.Error("api: evaluation failed",
			"path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		jsonErr(w, r, http.StatusInternalServerError, "evaluation failed: coefficient configuration error")
	}
}

// --- helpers ----------------------------------------------------------------

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, r *http.Request, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}
