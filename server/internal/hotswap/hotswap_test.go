package hotswap

import (
	"sync"
	"testing"
	"time"

	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/pkg/types"
)

func TestNew_FirstGeneration(t *testing.T) {
	st := coeffs.Reference()
	h := New(st)

	snap := h.Current()
	if snap.Generation != 1 {
		t.Errorf("Generation: got %d, want 1", snap.Generation)
	}
	if snap.Store != st {
		t.Error("Store: snapshot does not hold the supplied coefficients")
	}
	if snap.Engine == nil || snap.Engine.Store() != st {
		t.Error("Engine: not bound to the supplied coefficients")
	}
	if snap.LoadedAt.IsZero() {
		t.Error("LoadedAt is zero")
	}
}

func TestSwap_ReplacesSnapshot(t *testing.T) {
	h := New(coeffs.Reference())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	old := h.Current()

	f := coeffs.Reference().File()
	f.Units.Divisor = 40
	next := h.Swap(coeffs.New(f))

	if next.Generation != old.Generation+1 {
		t.Errorf("Generation: got %d, want %d", next.Generation, old.Generation+1)
	}
	if h.Current() != next {
		t.Error("Current does not return the swapped snapshot")
	}
	if !next.LoadedAt.Equal(fixed) {
		t.Errorf("LoadedAt: got %v, want %v", next.LoadedAt, fixed)
	}

	in := types.EngineInput{Type: types.Sedan, Mileage: 40_000, RepairQuote: 500, CurrentValue: 10_000}
	before, err := old.Engine.Evaluate(in)
	if err != nil {
		t.Fatalf("old Evaluate: %v", err)
	}
	after, err := next.Engine.Evaluate(in)
	if err != nil {
		t.Fatalf("new Evaluate: %v", err)
	}
	// 500/20 = 25 vs 500/40 = 12
	if before.Hint.RF-after.Hint.RF != 13 {
		t.Errorf("RF before %v after %v: want a 13-point drop from the new divisor", before.Hint.RF, after.Hint.RF)
	}
}

func TestSwap_ConcurrentGenerationsUnique(t *testing.T) {
	h := New(coeffs.Reference())
	st := coeffs.Reference()

	const n = 50
	gens := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gens <- h.Swap(st).Generation
		}()
	}
	wg.Wait()
	close(gens)

	seen := make(map[uint64]bool, n)
	for g := range gens {
		if seen[g] {
			t.Errorf("generation %d published twice", g)
		}
		seen[g] = true
	}
	if got := h.Current().Generation; got != n+1 {
		t.Errorf("final Generation: got %d, want %d", got, n+1)
	}
}

func TestFingerprint(t *testing.T) {
	ref := Fingerprint(coeffs.Reference())
	if ref != Fingerprint(coeffs.Reference()) {
		t.Error("equal coefficients must hash the same")
	}
	if ref == 0 {
		t.Error("reference fingerprint is zero")
	}

	f := coeffs.Reference().File()
	f.Units.Divisor = 40
	if Fingerprint(coeffs.New(f)) == ref {
		t.Error("a changed divisor must change the fingerprint")
	}

	h := New(coeffs.Reference())
	if h.Current().Fingerprint != ref {
		t.Errorf("snapshot Fingerprint: got %x, want %x", h.Current().Fingerprint, ref)
	}
	// A swap to identical contents bumps the generation but keeps the fingerprint.
	next := h.Swap(coeffs.Reference())
	if next.Generation != 2 || next.Fingerprint != ref {
		t.Errorf("after swap: generation %d fingerprint %x", next.Generation, next.Fingerprint)
	}
}
