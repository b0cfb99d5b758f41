// Package config loads the server configuration from a YAML file with
// MONEYPIT_* environment overrides layered on top.
//
// Config fields:
//   - Server.HTTPPort          — REST API, WebSocket simulator and /metrics (default 8080)
//   - Server.ShutdownTimeout   — graceful shutdown bound (default 10s)
//   - Coefficients.Path        — coefficient file (default config/coefficients.yaml)
//   - Coefficients.Watch       — hot reload on change (default true)
//   - RateLimit.RPS / Burst    — per-client token bucket (default 10 / 20; rps 0 disables)
//   - Cache.Backend            — memory | redis | none (default memory)
//   - Cache.TTL                — report cache lifetime (default 10m)
//   - Cache.RedisAddr          — host:port for the redis backend
//   - Cache.RedisPasswordEnv   — environment variable holding the redis password
//   - Log.Level                — debug | info | warn | error (default info)
//   - Auth.Mode                — none | apikey (default none)
//   - Auth.Header / KeyEnv     — header carrying the key (default X-API-Key) and
//     the environment variable holding the expected value
//   - Alerts.Webhooks          — reload alert targets: type (teams | slack |
//     pagerduty | http) and url_env
//   - Alerts.Cooldown          — minimum gap between repeat deliveries (default 15m)
//
// Environment variables name the section first, then the field:
// MONEYPIT_SERVER_HTTP_PORT, MONEYPIT_CACHE_BACKEND, MONEYPIT_RATELIMIT_RPS.
//
// Load(path) applies defaults, overlays file then environment, and validates.
package config
