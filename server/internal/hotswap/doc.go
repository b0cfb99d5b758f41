// Package hotswap holds the server's active decision engine behind an
// atomic pointer. A coefficient reload builds a fresh engine and swaps it in
// whole; in-flight requests finish on the snapshot they started with.
package hotswap
