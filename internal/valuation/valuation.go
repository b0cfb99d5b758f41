// Package valuation estimates a vehicle's current value and its deferred
// maintenance liability when the caller does not supply them. The curves are
// heuristics, not market data.
package valuation

import (
	"math"

	"github.com/moneypit/moneypit/pkg/types"
)

// ScrapValue is the floor for any estimated vehicle value.
const ScrapValue = 500.0

// baseValue is the estimated value of a zero-mileage vehicle.
func baseValue(t types.VehicleType) float64 {
	switch t {
	case types.Luxury:
		return 65_000
	case types.Performance:
		return 55_000
	case types.TruckVan:
		return 45_000
	case types.SUV:
		return 38_000
	default:
		return 28_000
	}
}

// retentionPer10k is the share of value kept per 10,000 miles.
func retentionPer10k(t types.VehicleType) float64 {
	switch t {
	case types.Luxury, types.Performance:
		return 0.88
	case types.TruckVan:
		return 0.93
	default:
		return 0.90
	}
}

// baseLiability is the deferred-maintenance liability of a new vehicle.
func baseLiability(t types.VehicleType) float64 {
	switch t {
	case types.Luxury:
		return 2_500
	case types.Performance:
		return 2_000
	case types.TruckVan:
		return 1_800
	default:
		return 1_200
	}
}

// EstimateValue returns base(t) × retention(t)^(mileage/10000), never less
// than ScrapValue.
func EstimateValue(t types.VehicleType, mileage int) float64 {
	v := baseValue(t) * math.Pow(retentionPer10k(t), float64(mileage)/10_000)
	return math.Max(v, ScrapValue)
}

// EstimateRepairCost returns baseLiability(t) × (1 + mileage/50000),
// truncated to a whole currency amount.
func EstimateRepairCost(t types.VehicleType, mileage int) float64 {
	return math.Trunc(baseLiability(t) * (1 + float64(mileage)/50_000))
}

// Resolve fills in the repair quote and current value when req omits them and
// records which fields were estimated.
func Resolve(req types.VehicleRequest) types.EngineInput {
	in := types.EngineInput{
		Type:    req.Type,
		Brand:   req.Brand,
		Model:   req.Model,
		Year:    req.Year,
		Mileage: req.Mileage,
	}

	if req.RepairQuote != nil {
		in.RepairQuote = *req.RepairQuote
	} else {
		in.RepairQuote = EstimateRepairCost(req.Type, req.Mileage)
		in.QuoteEstimated = true
	}

	if req.CurrentValue != nil {
		in.CurrentValue = *req.CurrentValue
	} else {
		in.CurrentValue = EstimateValue(req.Type, req.Mileage)
		in.ValueEstimated = true
	}
	return in
}
