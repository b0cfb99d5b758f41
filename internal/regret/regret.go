package regret

import (
	"fmt"

	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/internal/units"
	"github.com/moneypit/moneypit/pkg/types"
)

// Pain buffers are flat and do not scale with the quote.
const (
	painNeedsTow      = 50.0
	painKnownSeverity = 30.0
)

// severityAmplifier scales future risk when the owner reports an
// engine/transmission failure.
const severityAmplifier = 1.5

// Switching friction.
const (
	frictionBase          = 100.0
	frictionHateSwitching = 2.0
	frictionWantNewCar    = 0.5
	frictionNeutral       = 1.0
)

// liquidityScale converts illiquidity (1 − sellability) into points.
const liquidityScale = 200.0

// FixingBreakdown is RF split into its terms.
type FixingBreakdown struct {
	RepairPoints     int     `json:"repair_points"`
	FutureRiskPoints float64 `json:"future_risk_points"`
	PainPoints       float64 `json:"pain_points"`
	Total            float64 `json:"total"`
}

// MovingBreakdown is RM split into its terms.
type MovingBreakdown struct {
	FrictionPoints  float64 `json:"friction_points"`
	LiquidityPoints float64 `json:"liquidity_points"`
	Total           float64 `json:"total"`
}

// Calculator computes RF and RM against one coefficient snapshot.
type Calculator struct {
	store *coeffs.Store
	conv  units.Converter
}

// New returns a Calculator reading coefficients from st.
func New(st *coeffs.Store) *Calculator {
	return &Calculator{store: st, conv: units.FromStore(st)}
}

// Fixing computes the regret-of-fixing breakdown. Configuration errors are
// returned as is; no partial breakdown accompanies them.
func (c *Calculator) Fixing(in types.EngineInput, ctl types.SimulationControls) (FixingBreakdown, error) {
	repair, err := c.conv.PointsFor(in.RepairQuote)
	if err != nil {
		return FixingBreakdown{}, err
	}

	risk, err := c.futureRisk(in.Mileage)
	if err != nil {
		return FixingBreakdown{}, err
	}
	if ctl.Severity == types.SeverityEngineTransmission {
		risk *= severityAmplifier
	}

	pain := painPoints(ctl)

	return FixingBreakdown{
		RepairPoints:     repair,
		FutureRiskPoints: risk,
		PainPoints:       pain,
		Total:            float64(repair) + risk + pain,
	}, nil
}

// Moving computes the regret-of-moving breakdown.
func (c *Calculator) Moving(in types.EngineInput, ctl types.SimulationControls) (MovingBreakdown, error) {
	friction := frictionBase * hassleMultiplier(ctl.Hassle)

	score, err := c.store.Sellability(coeffs.ConditionFor(in.Mileage))
	if err != nil {
		return MovingBreakdown{}, fmt.Errorf("regret: %w", err)
	}
	liquidity := (1 - score) * liquidityScale

	return MovingBreakdown{
		FrictionPoints:  friction,
		LiquidityPoints: liquidity,
		Total:           friction + liquidity,
	}, nil
}

// RF returns the regret-of-fixing score.
func (c *Calculator) RF(in types.EngineInput, ctl types.SimulationControls) (float64, error) {
	b, err := c.Fixing(in, ctl)
	return b.Total, err
}

// RM returns the regret-of-moving score.
func (c *Calculator) RM(in types.EngineInput, ctl types.SimulationControls) (float64, error) {
	b, err := c.Moving(in, ctl)
	return b.Total, err
}

// futureRisk sums expected repair points over every system with a
// probability in the mileage bucket. Systems are visited in sorted order so
// the float sum is reproducible.
func (c *Calculator) futureRisk(mileage int) (float64, error) {
	bucket := coeffs.BucketFor(mileage)
	cascade := c.store.CascadeMultiplier()

	var total float64
	for _, sys := range c.store.Systems() {
		p, ok := c.store.FailureProbability(bucket, sys)
		if !ok {
			continue
		}
		r, err := c.store.CostRange(sys)
		if err != nil {
			return 0, fmt.Errorf("regret: %w", err)
		}
		total += p * r.Midpoint() * cascade
	}
	return total, nil
}

func painPoints(ctl types.SimulationControls) float64 {
	var pain float64
	if ctl.Mobility == types.MobilityNeedsTow {
		pain += painNeedsTow
	}
	switch ctl.Severity {
	case types.SeveritySuspensionBrakes, types.SeverityEngineTransmission:
		pain += painKnownSeverity
	case types.SeverityUnknown, "":
	}
	return pain
}

func hassleMultiplier(h types.HassleTolerance) float64 {
	switch h {
	case types.HassleHateSwitching:
		return frictionHateSwitching
	case types.HassleWantNewCar:
		return frictionWantNewCar
	case types.HassleNeutral, "":
		return frictionNeutral
	default:
		return frictionNeutral
	}
}
