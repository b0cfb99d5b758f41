// Package coeffs is the read-only coefficient store behind the regret engine.
//
// Top-level types:
//   - File — the YAML document: units.divisor, failure.cascade_multiplier,
//     failure.buckets (mileage bucket → system → probability),
//     failure.cost_ranges (system → {min, max} in points), sellability
//     (good|fair|poor → score) and optional per-type annual depreciation
//   - Store — an immutable deep copy of a File with typed accessors
//   - Bucket, Condition — closed enumerations with BucketFor and ConditionFor
//
// Load(path) and Parse(data) decode YAML with unknown keys rejected, then
// Validate checks divisor > 0, known bucket keys, probabilities in [0, 1], a
// cost range for every system and all three sellability scores. Every
// validation failure wraps ErrConfig.
//
// Reference() returns the embedded reference dataset (reference.yaml).
//
// Watch(ctx, path, onChange, onErr) uses fsnotify to detect file changes and
// hands each successfully loaded Store to onChange. Reloading always yields a
// new Store; nothing is mutated in place.
package coeffs
