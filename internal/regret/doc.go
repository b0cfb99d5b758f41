// Package regret computes the two expected-regret scores the decision engine
// compares.
//
// RF (regret of fixing) is what an owner stands to regret by repairing and
// keeping the vehicle:
//
//	RF = points(repair_quote)
//	   + Σ_system p(bucket, system) × midpoint(cost_range(system)) × cascade
//	     (× 1.5 when the failure is engine/transmission)
//	   + pain (50 if it needs a tow, +30 for any known severity)
//
// RM (regret of moving) is what they stand to regret by replacing it:
//
//	RM = 100 × hassle_multiplier + (1 − sellability(condition)) × 200
//
// Low sellability raises RM: an illiquid vehicle makes moving on more
// painful, not less.
//
// Every function is pure. The Calculator holds only an immutable
// *coeffs.Store and is safe for concurrent use.
package regret
