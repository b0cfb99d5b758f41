package coeffs

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

// Load reads, parses and validates the coefficient file at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("coeffs: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML coefficient document. Unknown keys are
// rejected so that a typo cannot silently drop a coefficient.
func Parse(data []byte) (*Store, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("coeffs: parse yaml: %w", err)
	}
	if err := Validate(f); err != nil {
		return nil, fmt.Errorf("coeffs: %w", err)
	}
	return New(f), nil
}

// Reference returns the embedded reference dataset.
func Reference() *Store {
	s, err := Parse(referenceYAML)
	if err != nil {
		panic(fmt.Sprintf("coeffs: embedded reference dataset is invalid: %v", err))
	}
	return s
}

// ReferenceYAML returns a copy of the embedded reference document.
func ReferenceYAML() []byte {
	return bytes.Clone(referenceYAML)
}

// Validate checks structural constraints on f. Every returned error wraps
// ErrConfig.
func Validate(f File) error {
	if f.Units.Divisor <= 0 {
		return fmt.Errorf("%w: units.divisor must be positive, got %v", ErrConfig, f.Units.Divisor)
	}
	if f.Failure.CascadeMultiplier <= 0 {
		return fmt.Errorf("%w: failure.cascade_multiplier must be positive, got %v",
			ErrConfig, f.Failure.CascadeMultiplier)
	}

	known := make(map[Bucket]bool, len(Buckets))
	for _, b := range Buckets {
		known[b] = true
	}
	for b, probs := range f.Failure.Buckets {
		if !known[b] {
			return fmt.Errorf("%w: failure.buckets: unknown bucket %q", ErrConfig, b)
		}
		for sys, p := range probs {
			if p < 0 || p > 1 {
				return fmt.Errorf("%w: failure.buckets.%s.%s: probability %v outside [0, 1]",
					ErrConfig, b, sys, p)
			}
			if _, ok := f.Failure.CostRanges[sys]; !ok {
				return fmt.Errorf("%w: failure.buckets.%s.%s: no matching cost range", ErrConfig, b, sys)
			}
		}
	}
	for sys, r := range f.Failure.CostRanges {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%w: failure.cost_ranges.%s: want 0 <= min <= max, got [%v, %v]",
				ErrConfig, sys, r.Min, r.Max)
		}
	}

	for _, c := range Conditions {
		v, ok := f.Sellability[c]
		if !ok {
			return fmt.Errorf("%w: sellability.%s is required", ErrConfig, c)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: sellability.%s: score %v outside [0, 1]", ErrConfig, c, v)
		}
	}
	if len(f.Sellability) != len(Conditions) {
		for c := range f.Sellability {
			switch c {
			case ConditionGood, ConditionFair, ConditionPoor:
			default:
				return fmt.Errorf("%w: sellability: unknown condition %q", ErrConfig, c)
			}
		}
	}

	for t, rate := range f.Depreciation {
		if !t.Valid() {
			return fmt.Errorf("%w: depreciation: unknown vehicle type %q", ErrConfig, t)
		}
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: depreciation.%s: annual rate %v outside [0, 1]", ErrConfig, t, rate)
		}
	}
	return nil
}
