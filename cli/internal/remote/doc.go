// Package remote is the CLI's client for a running moneypit-server.
//
// Client.Evaluate and Client.Simulate POST to the REST API and decode the
// report the server produced, including its diagnostics and the coefficient
// generation that scored it. Transient failures (connection errors, 429 and
// 502/503/504) are retried with truncated exponential backoff and jitter;
// a 429 Retry-After header stretches the wait. Every other non-200 status is
// returned at once as a *StatusError.
//
// Client.Stats scrapes the server's /metrics endpoint, parses the Prometheus
// text exposition with expfmt and sums the moneypit_* families into a Stats
// value.
//
// When an API key is configured it is injected into every request by an
// http.RoundTripper, so callers never set it by hand.
package remote
