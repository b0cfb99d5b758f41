package types

import "fmt"

// FailureSeverity is the owner's description of what is currently broken.
type FailureSeverity string

const (
	SeverityUnknown            FailureSeverity = "unknown"
	SeveritySuspensionBrakes   FailureSeverity = "suspension_brakes"
	SeverityEngineTransmission FailureSeverity = "engine_transmission"
)

// MobilityStatus says whether the vehicle can still be driven.
type MobilityStatus string

const (
	MobilityDrivable MobilityStatus = "drivable"
	MobilityNeedsTow MobilityStatus = "needs_tow"
)

// HassleTolerance captures how the owner feels about switching vehicles.
type HassleTolerance string

const (
	HassleHateSwitching HassleTolerance = "hate_switching"
	HassleNeutral       HassleTolerance = "neutral"
	HassleWantNewCar    HassleTolerance = "want_new_car"
)

// SimulationControls perturbs an evaluation without duplicating it. Empty
// enum fields mean unknown / drivable / neutral, and RetentionMonths 0 means
// no retention horizon was given.
type SimulationControls struct {
	Severity        FailureSeverity `json:"severity,omitempty"`
	Mobility        MobilityStatus  `json:"mobility,omitempty"`
	Hassle          HassleTolerance `json:"hassle,omitempty"`
	RetentionMonths int             `json:"retention_months,omitempty"`
}

// ParseFailureSeverity accepts the empty string as SeverityUnknown.
func ParseFailureSeverity(s string) (FailureSeverity, error) {
	switch FailureSeverity(s) {
	case "", SeverityUnknown:
		return SeverityUnknown, nil
	case SeveritySuspensionBrakes, SeverityEngineTransmission:
		return FailureSeverity(s), nil
	}
	return "", fmt.Errorf("unknown failure severity %q", s)
}

// ParseMobilityStatus accepts the empty string as MobilityDrivable.
func ParseMobilityStatus(s string) (MobilityStatus, error) {
	switch MobilityStatus(s) {
	case "", MobilityDrivable:
		return MobilityDrivable, nil
	case MobilityNeedsTow:
		return MobilityNeedsTow, nil
	}
	return "", fmt.Errorf("unknown mobility status %q", s)
}

// ParseHassleTolerance accepts the empty string as HassleNeutral.
func ParseHassleTolerance(s string) (HassleTolerance, error) {
	switch HassleTolerance(s) {
	case "", HassleNeutral:
		return HassleNeutral, nil
	case HassleHateSwitching, HassleWantNewCar:
		return HassleTolerance(s), nil
	}
	return "", fmt.Errorf("unknown hassle tolerance %q", s)
}

// Normalize returns c with empty enum fields replaced by their neutral value.
// It returns an error if any field holds an unknown value.
func (c SimulationControls) Normalize() (SimulationControls, error) {
	var err error
	out := c
	if out.Severity, err = ParseFailureSeverity(string(c.Severity)); err != nil {
		return SimulationControls{}, err
	}
	if out.Mobility, err = ParseMobilityStatus(string(c.Mobility)); err != nil {
		return SimulationControls{}, err
	}
	if out.Hassle, err = ParseHassleTolerance(string(c.Hassle)); err != nil {
		return SimulationControls{}, err
	}
	if c.RetentionMonths < 0 {
		return SimulationControls{}, fmt.Errorf("retention_months must not be negative")
	}
	return out, nil
}
