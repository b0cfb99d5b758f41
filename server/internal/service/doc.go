// Package service is the request path shared by the REST API and the
// WebSocket simulator: validate, read the active snapshot once, consult the
// cache, evaluate, annotate with diagnostics, record metrics.
package service
