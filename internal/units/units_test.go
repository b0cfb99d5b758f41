package units

import (
	"errors"
	"math"
	"testing"

	"github.com/moneypit/moneypit/internal/coeffs"
)

func TestPointsFor(t *testing.T) {
	tests := []struct {
		name    string
		divisor float64
		amount  float64
		want    int
	}{
		{"exact multiple", 20, 500, 25},
		{"truncates, does not round", 20, 599, 29},
		{"just below one point", 20, 19.99, 0},
		{"zero amount", 20, 0, 0},
		{"fractional divisor", 2.5, 10, 4},
		{"negative truncates toward zero", 20, -39, -1},
		{"largest money accepted", 20, 1e12, 50_000_000_000},
		{"fits below the int limit", 20, 1e20, 5_000_000_000_000_000_000},
		{"at the int limit", 1, float64(math.MaxInt64), math.MaxInt},
		{"beyond the int limit saturates", 20, 1e21, math.MaxInt},
		{"max float saturates", 0.5, math.MaxFloat64, math.MaxInt},
		{"infinite amount saturates", 20, math.Inf(1), math.MaxInt},
		{"huge negative saturates", 20, -1e21, math.MinInt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConverter(tc.divisor).PointsFor(tc.amount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("PointsFor(%v) at divisor %v = %d, want %d", tc.amount, tc.divisor, got, tc.want)
			}
		})
	}
}

func TestPointsFor_MonotoneAcrossIntLimit(t *testing.T) {
	c := NewConverter(20)
	prev := math.MinInt
	for _, amount := range []float64{0, 1e12, 1e18, 1e20, 1.8e20, 1.9e20, 1e21, 1e300} {
		got, err := c.PointsFor(amount)
		if err != nil {
			t.Fatalf("PointsFor(%v): %v", amount, err)
		}
		if got < prev {
			t.Errorf("PointsFor(%v) = %d, below %d for a smaller amount", amount, got, prev)
		}
		prev = got
	}
}

func TestPointsFor_NaNAmount(t *testing.T) {
	if _, err := NewConverter(20).PointsFor(math.NaN()); err == nil {
		t.Error("NaN amount: expected error")
	}
}

func TestPointsFor_InvalidDivisor(t *testing.T) {
	for _, d := range []float64{0, -1, -0.5} {
		_, err := NewConverter(d).PointsFor(1000)
		if err == nil {
			t.Fatalf("divisor %v: expected error, got nil", d)
		}
		if !errors.Is(err, coeffs.ErrConfig) {
			t.Errorf("divisor %v: error %v does not wrap coeffs.ErrConfig", d, err)
		}
	}
}

func TestFromStore(t *testing.T) {
	c := FromStore(coeffs.Reference())
	got, err := c.PointsFor(3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := int(3000 / coeffs.Reference().Divisor()); got != want {
		t.Errorf("PointsFor(3000) = %d, want %d", got, want)
	}
}
