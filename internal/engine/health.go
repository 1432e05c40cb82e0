package engine

import (
	"fmt"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

// AvgExhaustTemp is the derived parameter averaging the four cylinder exhaust temperatures.
const AvgExhaustTemp = "Avg_Exhaust_Temp"

// SafeRange bounds nominal operation for one monitored parameter.
type SafeRange struct {
	Parameter string
	Label     string
	Min       float64
	Max       float64
}

// safeRanges is the canonical health overview order.
var safeRanges = []SafeRange{
	{Parameter: string(models.FieldShaftRPM), Label: "RPM", Min: 850, Max: 1100},
	{Parameter: string(models.FieldEngineLoad), Label: "Load (%)", Min: 40, Max: 100},
	{Parameter: string(models.FieldOilTemp), Label: "Oil Temp", Min: 60, Max: 95},
	{Parameter: string(models.FieldOilPressure), Label: "Oil Press", Min: 2.5, Max: 4.5},
	{Parameter: string(models.FieldVibrationX), Label: "Vib X", Min: 0, Max: 0.1},
	{Parameter: string(models.FieldVibrationY), Label: "Vib Y", Min: 0, Max: 0.1},
	{Parameter: string(models.FieldVibrationZ), Label: "Vib Z", Min: 0, Max: 0.1},
	{Parameter: AvgExhaustTemp, Label: "Avg Exhaust", Min: 350, Max: 500},
}

func init() {
	for _, r := range safeRanges {
		if r.Max <= r.Min {
			panic(fmt.Sprintf("safe range for %s has max %v <= min %v", r.Parameter, r.Max, r.Min))
		}
	}
}

// SafeRanges returns a copy of the monitored parameter bounds in display order.
func SafeRanges() []SafeRange {
	return append([]SafeRange(nil), safeRanges...)
}

// Normalize scores each monitored parameter of the reading against its safe range.
// Absent fields are read as zero.
func Normalize(reading models.SensorReading) models.HealthAssessment {
	out := make(models.HealthAssessment, 0, len(safeRanges))
	for _, r := range safeRanges {
		value := parameterValue(reading, r.Parameter)
		out = append(out, models.HealthEntry{
			Parameter:  r.Parameter,
			Label:      r.Label,
			Score:      normalizeScore(value, r.Min, r.Max),
			Actual:     value,
			OutOfRange: outOfRange(value, r.Min, r.Max),
			Min:        r.Min,
			Max:        r.Max,
		})
	}
	return out
}

// AverageExhaustTemp is the mean of the four cylinder exhaust temperatures.
func AverageExhaustTemp(reading models.SensorReading) float64 {
	sum := 0.0
	for _, f := range models.ExhaustTempFields {
		sum += reading.Get(f)
	}
	return sum / float64(len(models.ExhaustTempFields))
}

func parameterValue(reading models.SensorReading, parameter string) float64 {
	if parameter == AvgExhaustTemp {
		return AverageExhaustTemp(reading)
	}
	return reading.Get(models.SensorField(parameter))
}

// normalizeScore maps value onto 0..100 across [min, max], clamped.
func normalizeScore(value, min, max float64) float64 {
	score := (value - min) / (max - min) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func outOfRange(value, min, max float64) bool {
	return value < min || value > max
}
