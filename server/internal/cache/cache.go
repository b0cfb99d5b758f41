package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache stores encoded reports by key. A miss and a backend failure both
// report ok=false; callers recompute either way.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Key derives a cache key from the coefficient fingerprint, the operation and
// the canonical request encoding. The fingerprint hashes coefficient contents,
// so replicas or restarts holding other coefficients never share entries.
func Key(fingerprint uint64, op string, canonical []byte) string {
	d := xxhash.New()
	_, _ = d.WriteString(op)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(canonical)
	return "moneypit:" + strconv.FormatUint(fingerprint, 16) + ":" + op + ":" +
		strconv.FormatUint(d.Sum64(), 16)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
