package models

import "time"

// FaultLabel is the closed set of classes emitted by the prediction service.
type FaultLabel int

const (
	// FaultUnknown marks a label outside the enumeration. It is never critical.
	FaultUnknown FaultLabel = iota
	FaultNormal
	FaultFuelInjection
	FaultCoolingSystem
	FaultTurbocharger
	FaultBearingWear
	FaultLubricationOil
	FaultAirIntake
	FaultVibration
)

// FaultLabels lists the known labels in the class-index order of the model.
var FaultLabels = []FaultLabel{
	FaultNormal,
	FaultFuelInjection,
	FaultCoolingSystem,
	FaultTurbocharger,
	FaultBearingWear,
	FaultLubricationOil,
	FaultAirIntake,
	FaultVibration,
}

func (l FaultLabel) String() string {
	switch l {
	case FaultNormal:
		return "Normal"
	case FaultFuelInjection:
		return "Fuel Injection Fault"
	case FaultCoolingSystem:
		return "Cooling System Fault"
	case FaultTurbocharger:
		return "Turbocharger Fault"
	case FaultBearingWear:
		return "Bearing Wear"
	case FaultLubricationOil:
		return "Lubrication Oil Degradation"
	case FaultAirIntake:
		return "Air Intake Restriction"
	case FaultVibration:
		return "Vibration Anomaly"
	default:
		return "Unknown"
	}
}

// IsCritical reports membership in the critical fault set.
func (l FaultLabel) IsCritical() bool {
	switch l {
	case FaultBearingWear, FaultTurbocharger, FaultVibration:
		return true
	default:
		return false
	}
}

// IsNormal reports whether the label is the healthy class.
func (l FaultLabel) IsNormal() bool {
	return l == FaultNormal
}

// ParseFaultLabel matches the exact service string. Unmatched input yields FaultUnknown.
func ParseFaultLabel(s string) (FaultLabel, bool) {
	for _, l := range FaultLabels {
		if l.String() == s {
			return l, true
		}
	}
	return FaultUnknown, false
}

// Attribution is one signed feature contribution as returned by the service.
type Attribution struct {
	Feature string
	Value   float64
}

// PredictionResult is a decoded prediction service response.
type PredictionResult struct {
	Label FaultLabel
	// RawLabel keeps the service string so unknown labels can still be shown.
	RawLabel      string
	Probabilities map[string]float64
	// Attributions preserve the order the service emitted them in.
	Attributions []Attribution
	ReceivedAt   time.Time
}
