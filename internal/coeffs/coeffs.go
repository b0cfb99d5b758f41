package coeffs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/moneypit/moneypit/pkg/types"
)

// ErrConfig marks every coefficient configuration error. These are fatal:
// callers must not retry or substitute a default for a required coefficient.
var ErrConfig = errors.New("coefficient configuration error")

// Bucket is a half-open, lower-inclusive mileage range.
type Bucket string

const (
	Bucket0To50k     Bucket = "0_50k"     // [0, 50000)
	Bucket50kTo100k  Bucket = "50k_100k"  // [50000, 100000)
	Bucket100kTo150k Bucket = "100k_150k" // [100000, 150000)
	Bucket150kPlus   Bucket = "150k_plus" // [150000, ∞)
)

// Buckets lists the mileage buckets in ascending order. Together they cover
// [0, ∞) without overlap.
var Buckets = []Bucket{Bucket0To50k, Bucket50kTo100k, Bucket100kTo150k, Bucket150kPlus}

// BucketFor returns the bucket containing mileage.
func BucketFor(mileage int) Bucket {
	switch {
	case mileage < 50_000:
		return Bucket0To50k
	case mileage < 100_000:
		return Bucket50kTo100k
	case mileage < 150_000:
		return Bucket100kTo150k
	default:
		return Bucket150kPlus
	}
}

// Condition is the resale condition class used for sellability lookups.
type Condition string

const (
	ConditionGood Condition = "good"
	ConditionFair Condition = "fair"
	ConditionPoor Condition = "poor"
)

// Conditions lists the sellability conditions from best to worst.
var Conditions = []Condition{ConditionGood, ConditionFair, ConditionPoor}

// ConditionFor maps mileage to a resale condition.
func ConditionFor(mileage int) Condition {
	switch {
	case mileage < 80_000:
		return ConditionGood
	case mileage < 150_000:
		return ConditionFair
	default:
		return ConditionPoor
	}
}

// CostRange is the repair cost range of one vehicle system, in points.
type CostRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Midpoint returns the centre of the range.
func (r CostRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// File is the on-disk shape of a coefficient file. Fields map 1:1 to
// config/coefficients.yaml.
type File struct {
	// Version is a free-form label echoed by the health endpoint.
	Version string `yaml:"version"`

	Units       UnitsSection          `yaml:"units"`
	Failure     FailureSection        `yaml:"failure"`
	Sellability map[Condition]float64 `yaml:"sellability"`

	// Depreciation holds optional annual depreciation rates per vehicle type.
	Depreciation map[types.VehicleType]float64 `yaml:"depreciation"`
}

// UnitsSection configures the currency → points conversion.
type UnitsSection struct {
	// Divisor is the currency amount that makes up one point. Must be > 0.
	Divisor float64 `yaml:"divisor"`
}

// FailureSection holds the failure-risk tables.
type FailureSection struct {
	// CascadeMultiplier amplifies expected cost from correlated failures.
	CascadeMultiplier float64 `yaml:"cascade_multiplier"`

	// Buckets maps a mileage bucket to per-system base failure probabilities.
	// A bucket may be omitted; it then contributes no future risk.
	Buckets map[Bucket]map[string]float64 `yaml:"buckets"`

	// CostRanges maps a system name to its repair cost range in points.
	CostRanges map[string]CostRange `yaml:"cost_ranges"`
}

// Store is a read-only view over a coefficient File. It is safe for
// concurrent use because nothing mutates it after New returns; a reload
// builds a new Store.
type Store struct {
	f       File
	systems []string
}

// New returns a Store holding a deep copy of f. It does not validate; use
// Parse or Load for files from outside the process.
func New(f File) *Store {
	cp := File{
		Version:      f.Version,
		Units:        f.Units,
		Sellability:  make(map[Condition]float64, len(f.Sellability)),
		Depreciation: make(map[types.VehicleType]float64, len(f.Depreciation)),
		Failure: FailureSection{
			CascadeMultiplier: f.Failure.CascadeMultiplier,
			Buckets:           make(map[Bucket]map[string]float64, len(f.Failure.Buckets)),
			CostRanges:        make(map[string]CostRange, len(f.Failure.CostRanges)),
		},
	}
	for k, v := range f.Sellability {
		cp.Sellability[k] = v
	}
	for k, v := range f.Depreciation {
		cp.Depreciation[k] = v
	}
	for k, v := range f.Failure.CostRanges {
		cp.Failure.CostRanges[k] = v
	}

	seen := make(map[string]struct{})
	for b, probs := range f.Failure.Buckets {
		m := make(map[string]float64, len(probs))
		for sys, p := range probs {
			m[sys] = p
			seen[sys] = struct{}{}
		}
		cp.Failure.Buckets[b] = m
	}
	systems := make([]string, 0, len(seen))
	for sys := range seen {
		systems = append(systems, sys)
	}
	sort.Strings(systems)

	return &Store{f: cp, systems: systems}
}

// Version returns the dataset label.
func (s *Store) Version() string { return s.f.Version }

// Divisor returns the currency → points divisor as configured. Validity is
// checked by the unit converter at the point of use.
func (s *Store) Divisor() float64 { return s.f.Units.Divisor }

// CascadeMultiplier returns the correlated-failure amplifier.
func (s *Store) CascadeMultiplier() float64 { return s.f.Failure.CascadeMultiplier }

// Systems returns every system named in any bucket, sorted by name.
func (s *Store) Systems() []string {
	out := make([]string, len(s.systems))
	copy(out, s.systems)
	return out
}

// FailureProbability returns the base failure probability of system in
// bucket b. ok is false when the bucket or the system entry is absent.
func (s *Store) FailureProbability(b Bucket, system string) (p float64, ok bool) {
	probs, ok := s.f.Failure.Buckets[b]
	if !ok {
		return 0, false
	}
	p, ok = probs[system]
	return p, ok
}

// CostRange returns the cost range of system. A missing range is a
// configuration error.
func (s *Store) CostRange(system string) (CostRange, error) {
	r, ok := s.f.Failure.CostRanges[system]
	if !ok {
		return CostRange{}, fmt.Errorf("%w: no cost range for system %q", ErrConfig, system)
	}
	return r, nil
}

// Sellability returns the sellability score for condition c. A missing score
// is a configuration error.
func (s *Store) Sellability(c Condition) (float64, error) {
	v, ok := s.f.Sellability[c]
	if !ok {
		return 0, fmt.Errorf("%w: no sellability score for condition %q", ErrConfig, c)
	}
	return v, nil
}

// AnnualDepreciation returns the configured annual depreciation override for
// t, if any.
func (s *Store) AnnualDepreciation(t types.VehicleType) (float64, bool) {
	v, ok := s.f.Depreciation[t]
	return v, ok
}

// File returns a deep copy of the underlying coefficient file.
func (s *Store) File() File {
	return New(s.f).f
}
