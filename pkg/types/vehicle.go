package types

import (
	"fmt"
	"math"
)

// VehicleType is the coarse vehicle class that drives valuation curves and
// depreciation heuristics.
type VehicleType string

const (
	Sedan       VehicleType = "sedan"
	SUV         VehicleType = "suv"
	TruckVan    VehicleType = "truck_van"
	Performance VehicleType = "performance"
	Luxury      VehicleType = "luxury"
)

// VehicleTypes lists every known vehicle type in display order.
var VehicleTypes = []VehicleType{Sedan, SUV, TruckVan, Performance, Luxury}

// ParseVehicleType returns the VehicleType named by s.
func ParseVehicleType(s string) (VehicleType, error) {
	for _, t := range VehicleTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown vehicle type %q", s)
}

// Valid reports whether t is one of the known vehicle types.
func (t VehicleType) Valid() bool {
	_, err := ParseVehicleType(string(t))
	return err == nil
}

// VehicleRequest is the caller-facing description of a vehicle. RepairQuote
// and CurrentValue are optional; nil means "estimate it for me".
type VehicleRequest struct {
	Type         VehicleType `json:"type"`
	Brand        string      `json:"brand,omitempty"`
	Model        string      `json:"model,omitempty"`
	Year         int         `json:"year,omitempty"`
	Mileage      int         `json:"mileage"`
	RepairQuote  *float64    `json:"repair_quote,omitempty"`
	CurrentValue *float64    `json:"current_value,omitempty"`
}

// EngineInput is a fully resolved vehicle description. Monetary fields are
// always populated; the *Estimated flags record which ones were filled in by
// the valuation estimator rather than supplied by the caller.
type EngineInput struct {
	Type           VehicleType `json:"type"`
	Brand          string      `json:"brand,omitempty"`
	Model          string      `json:"model,omitempty"`
	Year           int         `json:"year,omitempty"`
	Mileage        int         `json:"mileage"`
	RepairQuote    float64     `json:"repair_quote"`
	CurrentValue   float64     `json:"current_value"`
	QuoteEstimated bool        `json:"quote_estimated"`
	ValueEstimated bool        `json:"value_estimated"`
}

// Accepted model-year range. Zero means the year was not given.
const (
	MinYear = 1900
	MaxYear = 2100
)

// MaxMoney is the largest repair quote or current value accepted.
const MaxMoney = 1e12

// Validate rejects requests the engine cannot score: an unknown type,
// negative mileage, or a monetary value that is negative, non-finite or
// above MaxMoney.
func (r VehicleRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown vehicle type %q", r.Type)
	}
	if r.Mileage < 0 {
		return fmt.Errorf("mileage must not be negative, got %d", r.Mileage)
	}
	if r.Year != 0 && (r.Year < MinYear || r.Year > MaxYear) {
		return fmt.Errorf("year %d out of range [%d, %d]", r.Year, MinYear, MaxYear)
	}
	if err := validMoney("repair_quote", r.RepairQuote); err != nil {
		return err
	}
	return validMoney("current_value", r.CurrentValue)
}

func validMoney(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("%s must be a finite number", field)
	}
	if *v < 0 {
		return fmt.Errorf("%s must not be negative, got %v", field, *v)
	}
	if *v > MaxMoney {
		return fmt.Errorf("%s must not exceed %.0f, got %v", field, MaxMoney, *v)
	}
	return nil
}
