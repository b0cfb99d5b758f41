package decision

import (
	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/internal/regret"
	"github.com/moneypit/moneypit/pkg/types"
)

// Margin is the hysteresis half-width between STABLE and TIME_BOMB.
const Margin = 50.0

// narratives holds the single fixed text for each verdict state.
var narratives = map[types.VerdictState]string{
	types.Stable: "Repairing is the lower-regret path. The fix is small next to " +
		"the risk, hassle and lost resale value of replacing this vehicle.",
	types.Borderline: "Too close to call. Repairing and replacing carry about the " +
		"same expected regret, so let your own priorities decide.",
	types.TimeBomb: "This vehicle is turning into a money pit. Expected repairs " +
		"outweigh the cost and hassle of moving on.",
}

// labels maps a verdict state to its money-pit display label.
var labels = map[types.VerdictState]types.MoneyPitLabel{
	types.Stable:     types.Surface,
	types.Borderline: types.Surface,
	types.TimeBomb:   types.DeepPit,
}

// Engine evaluates vehicles against one immutable coefficient snapshot.
// It is safe for concurrent use. Build a new Engine to pick up new
// coefficients.
type Engine struct {
	store *coeffs.Store
	calc  *regret.Calculator
}

// New returns an Engine bound to st.
func New(st *coeffs.Store) *Engine {
	return &Engine{store: st, calc: regret.New(st)}
}

// Store returns the coefficient snapshot the engine was built with.
func (e *Engine) Store() *coeffs.Store { return e.store }

// Evaluate classifies in under neutral simulation controls.
func (e *Engine) Evaluate(in types.EngineInput) (types.VerdictResult, error) {
	return e.Simulate(in, types.SimulationControls{})
}

// Simulate classifies in with ctl overlaid on the computation.
func (e *Engine) Simulate(in types.EngineInput, ctl types.SimulationControls) (types.VerdictResult, error) {
	fix, move, err := e.scores(in, ctl)
	if err != nil {
		return types.VerdictResult{}, err
	}
	return verdict(fix.Total, move.Total), nil
}

func (e *Engine) scores(in types.EngineInput, ctl types.SimulationControls) (regret.FixingBreakdown, regret.MovingBreakdown, error) {
	fix, err := e.calc.Fixing(in, ctl)
	if err != nil {
		return regret.FixingBreakdown{}, regret.MovingBreakdown{}, err
	}
	move, err := e.calc.Moving(in, ctl)
	if err != nil {
		return regret.FixingBreakdown{}, regret.MovingBreakdown{}, err
	}
	return fix, move, nil
}

// Classify maps (RF, RM) to exactly one verdict state. It is stateless: the
// previous verdict for the same vehicle plays no part.
func Classify(rf, rm float64) types.VerdictState {
	switch {
	case rf > rm+Margin:
		return types.TimeBomb
	case rf <= rm-Margin:
		return types.Stable
	default:
		return types.Borderline
	}
}

// Narrative returns the fixed narrative text for s.
func Narrative(s types.VerdictState) string {
	return narratives[s]
}

func verdict(rf, rm float64) types.VerdictResult {
	state := Classify(rf, rm)
	return types.VerdictResult{
		State:     state,
		Narrative: narratives[state],
		Hint: types.VisualizationHint{
			RF:    rf,
			RM:    rm,
			Label: labels[state],
		},
	}
}
