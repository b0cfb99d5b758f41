package regret

import (
	"errors"
	"math"
	"testing"

	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/pkg/types"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func sedan(mileage int, quote float64) types.EngineInput {
	return types.EngineInput{Type: types.Sedan, Mileage: mileage, RepairQuote: quote, CurrentValue: 10_000}
}

var neutral = types.SimulationControls{}

// --- reference dataset values ---

func TestFixing_ReferenceValues(t *testing.T) {
	calc := New(coeffs.Reference())

	tests := []struct {
		name       string
		in         types.EngineInput
		ctl        types.SimulationControls
		wantRepair int
		wantRisk   float64
		wantPain   float64
	}{
		{
			// 500/20 = 25; bucket 0_50k risk = 27.4 × 1.25
			name: "low mileage small quote", in: sedan(40_000, 500), ctl: neutral,
			wantRepair: 25, wantRisk: 34.25, wantPain: 0,
		},
		{
			// 3000/20 = 150; bucket 150k_plus risk = 241.5 × 1.25
			name: "high mileage big quote", in: sedan(160_000, 3_000), ctl: neutral,
			wantRepair: 150, wantRisk: 301.875, wantPain: 0,
		},
		{
			// bucket 50k_100k risk = 65.9 × 1.25 × 1.5; pain 50 + 30
			name: "engine failure needing a tow", in: sedan(60_000, 1_000),
			ctl:        types.SimulationControls{Severity: types.SeverityEngineTransmission, Mobility: types.MobilityNeedsTow},
			wantRepair: 50, wantRisk: 123.5625, wantPain: 80,
		},
		{
			// suspension/brakes adds pain but does not amplify risk
			name: "suspension failure", in: sedan(120_000, 1_999),
			ctl:        types.SimulationControls{Severity: types.SeveritySuspensionBrakes},
			wantRepair: 99, wantRisk: 170, wantPain: 30,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := calc.Fixing(tc.in, tc.ctl)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.RepairPoints != tc.wantRepair {
				t.Errorf("RepairPoints = %d, want %d", b.RepairPoints, tc.wantRepair)
			}
			if !almostEqual(b.FutureRiskPoints, tc.wantRisk, 1e-9) {
				t.Errorf("FutureRiskPoints = %v, want %v", b.FutureRiskPoints, tc.wantRisk)
			}
			if b.PainPoints != tc.wantPain {
				t.Errorf("PainPoints = %v, want %v", b.PainPoints, tc.wantPain)
			}
			want := float64(tc.wantRepair) + tc.wantRisk + tc.wantPain
			if !almostEqual(b.Total, want, 1e-9) {
				t.Errorf("Total = %v, want %v", b.Total, want)
			}
		})
	}
}

func TestMoving_ReferenceValues(t *testing.T) {
	calc := New(coeffs.Reference())

	tests := []struct {
		name          string
		mileage       int
		hassle        types.HassleTolerance
		wantFriction  float64
		wantLiquidity float64
	}{
		{"good condition neutral", 40_000, types.HassleNeutral, 100, 30},
		{"empty hassle is neutral", 40_000, "", 100, 30},
		{"fair condition", 80_000, types.HassleNeutral, 100, 90},
		{"poor condition", 150_000, types.HassleNeutral, 100, 150},
		{"hate switching doubles friction", 40_000, types.HassleHateSwitching, 200, 30},
		{"want new car halves friction", 40_000, types.HassleWantNewCar, 50, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := calc.Moving(sedan(tc.mileage, 0), types.SimulationControls{Hassle: tc.hassle})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(b.FrictionPoints, tc.wantFriction, 1e-9) {
				t.Errorf("FrictionPoints = %v, want %v", b.FrictionPoints, tc.wantFriction)
			}
			if !almostEqual(b.LiquidityPoints, tc.wantLiquidity, 1e-9) {
				t.Errorf("LiquidityPoints = %v, want %v", b.LiquidityPoints, tc.wantLiquidity)
			}
			if !almostEqual(b.Total, tc.wantFriction+tc.wantLiquidity, 1e-9) {
				t.Errorf("Total = %v, want %v", b.Total, tc.wantFriction+tc.wantLiquidity)
			}
		})
	}
}

// --- properties ---

func TestScoresNonNegative(t *testing.T) {
	calc := New(coeffs.Reference())
	controls := []types.SimulationControls{
		neutral,
		{Severity: types.SeverityEngineTransmission, Mobility: types.MobilityNeedsTow, Hassle: types.HassleHateSwitching},
		{Severity: types.SeveritySuspensionBrakes, Hassle: types.HassleWantNewCar},
	}
	for _, vt := range types.VehicleTypes {
		for m := 0; m <= 300_000; m += 10_000 {
			for _, q := range []float64{0, 250, 1_500, 12_000} {
				for _, ctl := range controls {
					in := types.EngineInput{Type: vt, Mileage: m, RepairQuote: q, CurrentValue: 5_000}
					rf, err := calc.RF(in, ctl)
					if err != nil {
						t.Fatalf("RF: %v", err)
					}
					rm, err := calc.RM(in, ctl)
					if err != nil {
						t.Fatalf("RM: %v", err)
					}
					if rf < 0 || rm < 0 {
						t.Errorf("negative score for %+v %+v: RF=%v RM=%v", in, ctl, rf, rm)
					}
				}
			}
		}
	}
}

func TestRF_MonotoneInQuote(t *testing.T) {
	calc := New(coeffs.Reference())
	for _, m := range []int{0, 75_000, 125_000, 200_000} {
		prev := math.Inf(-1)
		for q := 0.0; q <= 10_000; q += 37 {
			rf, err := calc.RF(sedan(m, q), neutral)
			if err != nil {
				t.Fatalf("RF: %v", err)
			}
			if rf < prev {
				t.Errorf("mileage %d: RF dropped from %v to %v at quote %v", m, prev, rf, q)
			}
			prev = rf
		}
	}
}

func TestRF_HugeQuotesStayPositiveAndMonotone(t *testing.T) {
	calc := New(coeffs.Reference())
	prev := math.Inf(-1)
	for _, q := range []float64{1e12, 1e20, 1e21, 1e30} {
		rf, err := calc.RF(sedan(160_000, q), neutral)
		if err != nil {
			t.Fatalf("RF(quote %v): %v", q, err)
		}
		if rf < 0 || rf < prev {
			t.Errorf("RF(quote %v) = %v, previous %v", q, rf, prev)
		}
		prev = rf
	}
}

func TestFutureRisk_NonDecreasingAcrossBuckets(t *testing.T) {
	calc := New(coeffs.Reference())
	prev := math.Inf(-1)
	for _, m := range []int{0, 50_000, 100_000, 150_000} {
		b, err := calc.Fixing(sedan(m, 0), neutral)
		if err != nil {
			t.Fatalf("Fixing: %v", err)
		}
		if b.FutureRiskPoints < prev {
			t.Errorf("future risk dropped from %v to %v at %d miles", prev, b.FutureRiskPoints, m)
		}
		prev = b.FutureRiskPoints
	}
}

func TestRM_HassleOrdering(t *testing.T) {
	calc := New(coeffs.Reference())
	for _, m := range []int{10_000, 90_000, 170_000} {
		in := sedan(m, 1_000)
		hate, _ := calc.RM(in, types.SimulationControls{Hassle: types.HassleHateSwitching})
		mid, _ := calc.RM(in, types.SimulationControls{Hassle: types.HassleNeutral})
		want, _ := calc.RM(in, types.SimulationControls{Hassle: types.HassleWantNewCar})
		if !(hate > mid && mid > want) {
			t.Errorf("mileage %d: want RM(hate) > RM(neutral) > RM(want_new_car), got %v, %v, %v",
				m, hate, mid, want)
		}
	}
}

func TestRF_EngineSeverityExceedsUnknown(t *testing.T) {
	calc := New(coeffs.Reference())
	for _, m := range []int{50_000, 99_999, 100_000, 150_000, 250_000} {
		in := sedan(m, 2_000)
		engine, _ := calc.RF(in, types.SimulationControls{Severity: types.SeverityEngineTransmission})
		unknown, _ := calc.RF(in, types.SimulationControls{Severity: types.SeverityUnknown})
		if engine <= unknown {
			t.Errorf("mileage %d: RF(engine) = %v, want > RF(unknown) = %v", m, engine, unknown)
		}
	}
}

// Illiquid vehicles make moving more painful, so RM rises with mileage.
func TestRM_LiquidityInversion(t *testing.T) {
	calc := New(coeffs.Reference())
	good, _ := calc.RM(sedan(10_000, 0), neutral)
	poor, _ := calc.RM(sedan(200_000, 0), neutral)
	if poor <= good {
		t.Errorf("RM(poor) = %v, want > RM(good) = %v", poor, good)
	}
}

// --- configuration errors ---

func validFile() coeffs.File {
	return coeffs.File{
		Units: coeffs.UnitsSection{Divisor: 10},
		Failure: coeffs.FailureSection{
			CascadeMultiplier: 1,
			Buckets: map[coeffs.Bucket]map[string]float64{
				coeffs.Bucket0To50k: {"engine": 0.5},
			},
			CostRanges: map[string]coeffs.CostRange{"engine": {Min: 10, Max: 30}},
		},
		Sellability: map[coeffs.Condition]float64{
			coeffs.ConditionGood: 0.8, coeffs.ConditionFair: 0.5, coeffs.ConditionPoor: 0.2,
		},
	}
}

func TestFixing_ZeroDivisor(t *testing.T) {
	f := validFile()
	f.Units.Divisor = 0
	_, err := New(coeffs.New(f)).Fixing(sedan(10_000, 500), neutral)
	if !errors.Is(err, coeffs.ErrConfig) {
		t.Fatalf("Fixing with zero divisor: got %v, want ErrConfig", err)
	}
}

func TestFixing_MissingCostRange(t *testing.T) {
	f := validFile()
	f.Failure.CostRanges = nil
	_, err := New(coeffs.New(f)).Fixing(sedan(10_000, 500), neutral)
	if !errors.Is(err, coeffs.ErrConfig) {
		t.Fatalf("Fixing with missing cost range: got %v, want ErrConfig", err)
	}
}

func TestFixing_MissingBucketContributesZero(t *testing.T) {
	calc := New(coeffs.New(validFile()))

	b, err := calc.Fixing(sedan(120_000, 500), neutral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.FutureRiskPoints != 0 {
		t.Errorf("FutureRiskPoints for absent bucket = %v, want 0", b.FutureRiskPoints)
	}

	// 0.5 × 20 × 1
	b, err = calc.Fixing(sedan(10_000, 500), neutral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.FutureRiskPoints != 10 {
		t.Errorf("FutureRiskPoints = %v, want 10", b.FutureRiskPoints)
	}
}

func TestMoving_MissingSellability(t *testing.T) {
	f := validFile()
	delete(f.Sellability, coeffs.ConditionPoor)
	_, err := New(coeffs.New(f)).Moving(sedan(200_000, 0), neutral)
	if !errors.Is(err, coeffs.ErrConfig) {
		t.Fatalf("Moving with missing sellability: got %v, want ErrConfig", err)
	}
}
