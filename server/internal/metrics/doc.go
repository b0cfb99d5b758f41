// Package metrics exposes the server's Prometheus instrumentation.
//
// Collectors:
//   - moneypit_verdicts_total{state,mode}
//   - moneypit_cache_requests_total{result}
//   - moneypit_coefficient_reloads_total{outcome}
//   - moneypit_evaluation_duration_seconds{mode}
//   - moneypit_coefficient_generation
//   - moneypit_ws_clients
//
// Each Metrics owns its registry, so tests and multiple servers in one
// process never collide on registration.
package metrics
