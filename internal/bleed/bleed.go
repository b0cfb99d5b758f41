package bleed

import (
	"math"

	"github.com/moneypit/moneypit/pkg/types"
)

// Risk probability tiers by mileage.
const (
	riskLow    = 0.10
	riskMedium = 0.35
	riskHigh   = 0.60

	lowTierMaxMileage    = 100_000
	mediumTierMaxMileage = 150_000
)

// Input holds everything the cost-of-inaction projection needs.
type Input struct {
	Type         types.VehicleType
	Mileage      int
	RepairQuote  float64
	CurrentValue float64

	// AnnualDepreciation is the configured annual rate for Type. Nil means no
	// override; the per-type heuristic is used instead.
	AnnualDepreciation *float64
}

// Output is the projected six-month bleed and its components.
type Output struct {
	// Amount is the total, rounded to the nearest 100.
	Amount float64

	// DepreciationLoss is CurrentValue × SemiAnnualRate, unrounded.
	DepreciationLoss float64
	// RiskExposure is RepairQuote × RiskProbability, unrounded.
	RiskExposure float64

	SemiAnnualRate  float64
	RiskProbability float64
}

// Compute projects the six-month asset bleed for in.
func Compute(in Input) Output {
	rate := SemiAnnualRate(in.Type, in.AnnualDepreciation)
	risk := RiskProbability(in.Mileage)

	dep := in.CurrentValue * rate
	exposure := in.RepairQuote * risk

	return Output{
		Amount:           roundTo100(dep + exposure),
		DepreciationLoss: dep,
		RiskExposure:     exposure,
		SemiAnnualRate:   rate,
		RiskProbability:  risk,
	}
}

// AssetBleed is shorthand for Compute(in).Amount.
func AssetBleed(in Input) float64 {
	return Compute(in).Amount
}

// SemiAnnualRate returns half the annual override when present, else the
// heuristic six-month depreciation rate for t.
func SemiAnnualRate(t types.VehicleType, annualOverride *float64) float64 {
	if annualOverride != nil {
		return *annualOverride / 2
	}
	switch t {
	case types.Luxury, types.Performance:
		return 0.15
	case types.SUV, types.TruckVan:
		return 0.08
	default:
		return 0.10
	}
}

// RiskProbability returns the chance that the deferred repair becomes
// unavoidable within six months.
func RiskProbability(mileage int) float64 {
	switch {
	case mileage > mediumTierMaxMileage:
		return riskHigh
	case mileage > lowTierMaxMileage:
		return riskMedium
	default:
		return riskLow
	}
}

// roundTo100 rounds v to the nearest multiple of 100, halves away from zero.
func roundTo100(v float64) float64 {
	return math.Round(v/100) * 100
}
