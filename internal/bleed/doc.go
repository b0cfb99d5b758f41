// Package bleed projects the cost of inaction ("asset bleed"): how much value
// a vehicle loses over the next six months if it sits unrepaired.
//
// Compute(Input) returns the bleed rounded to the nearest 100 together with
// its two terms, so callers can render a per-term breakdown:
//
//	bleed = round100(
//	    current_value × semi_annual_depreciation +
//	    repair_quote  × risk_probability
//	)
//
// semi_annual_depreciation is half the configured annual override when one
// exists, else a per-type heuristic (luxury/performance 0.15,
// suv/truck_van 0.08, sedan 0.10).
//
// risk_probability tiers: ≤100,000 miles 0.10; ≤150,000 miles 0.35;
// otherwise 0.60. Both boundaries belong to the lower tier.
package bleed
