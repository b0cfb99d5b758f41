// Package cache stores encoded evaluation reports so that repeated requests
// for the same vehicle and controls skip recomputation.
//
// Backends:
//   - Memory — in-process map with TTL eviction (Run)
//   - Redis  — shared across replicas via go-redis
//   - Nop    — caching disabled
//
// Key folds a fingerprint of the coefficient contents into every key, so
// processes sharing a Redis cache only share results for identical files.
package cache
