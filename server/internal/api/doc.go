// Package api implements the HTTP REST API for the moneypit server.
//
// New(svc, limiter, alerts) returns an http.Handler that serves:
//
//	GET  /api/v1/health        — status (ok | degraded), coefficient version,
//	                             generation, loaded_at, alert_count
//	GET  /api/v1/alerts        — firing and recently resolved reload alerts
//	GET  /api/v1/coefficients  — the active coefficient tables
//	POST /api/v1/evaluate      — {vehicle} → report under neutral controls
//	POST /api/v1/simulate      — {vehicle, controls} → report
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method
//   - Echo or assign an X-Request-ID (UUID)
//   - Return 429 when the caller's token bucket is empty
//
// Malformed bodies and invalid vehicles or controls return 400. A coefficient
// configuration error returns 500 and is logged with the request ID.
package api
