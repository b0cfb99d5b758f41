// Package types defines the shared Go types used by the regret engine, the
// HTTP server and the CLI. These are the canonical in-memory representations
// of an evaluation request and its verdict, separate from any JSON envelope
// the server wraps around them.
//
// Enumerations are closed string types. Parse* functions reject unknown
// values so that every decision point downstream can switch exhaustively.
// The zero value of SimulationControls is the neutral baseline overlay.
package types
