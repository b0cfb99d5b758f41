package hotswap

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/internal/decision"
)

// Snapshot pairs an engine with the coefficients it was built from.
// Snapshots are immutable once published.
type Snapshot struct {
	Engine *decision.Engine
	Store  *coeffs.Store

	// Generation increases by one on every Swap. It is local to the process
	// and only reported; it never keys shared state.
	Generation uint64
	LoadedAt   time.Time

	// Fingerprint hashes the coefficient contents. Two processes holding the
	// same file agree on it; any edit changes it. Cache keys use it.
	Fingerprint uint64
}

// Holder publishes the active Snapshot. Readers call Current once per request
// and use that snapshot throughout, so a concurrent Swap never mixes two
// coefficient sets inside one evaluation.
type Holder struct {
	cur atomic.Pointer[Snapshot]
	now func() time.Time
}

// New returns a Holder serving st as generation 1.
func New(st *coeffs.Store) *Holder {
	h := &Holder{now: time.Now}
	h.cur.Store(h.build(st, 1))
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *Snapshot {
	return h.cur.Load()
}

// Swap publishes a new snapshot built from st and returns it.
func (h *Holder) Swap(st *coeffs.Store) *Snapshot {
	for {
		old := h.cur.Load()
		next := h.build(st, old.Generation+1)
		if h.cur.CompareAndSwap(old, next) {
			return next
		}
	}
}

func (h *Holder) build(st *coeffs.Store, gen uint64) *Snapshot {
	return &Snapshot{
		Engine:      decision.New(st),
		Store:       st,
		Generation:  gen,
		LoadedAt:    h.now(),
		Fingerprint: Fingerprint(st),
	}
}

// Fingerprint hashes the canonical JSON encoding of st's coefficients.
// Map keys encode sorted, so equal contents always hash the same.
func Fingerprint(st *coeffs.Store) uint64 {
	raw, err := json.Marshal(st.File())
	if err != nil {
		// Only NaN or Inf coefficients fail to encode.
		return 0
	}
	return xxhash.Sum64(raw)
}
