// Package decision turns the two regret scores into a verdict.
//
// engine.go provides Engine with the two core operations, Evaluate(input)
// and Simulate(input, controls). Evaluate is Simulate with neutral controls;
// both route through the same classification step:
//
//	TIME_BOMB   if RF >  RM + 50
//	STABLE      if RF <= RM - 50
//	BORDERLINE  otherwise
//
// The 50-point margin is a hysteresis band. It keeps the verdict from
// flickering on negligible deltas at the price of an explicit "too close to
// call" outcome that callers must treat as a first-class answer.
//
// report.go provides Engine.Report, which bundles the verdict with the
// resolved input, the RF/RM breakdowns, the six-month asset bleed and cost
// line items for display.
//
// Configuration errors from the regret calculator propagate unchanged
// (errors.Is(err, coeffs.ErrConfig)); the engine never substitutes a result.
package decision
