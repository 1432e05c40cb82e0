package models

import "time"

// HealthEntry is one monitored parameter scored against its safe operating range.
type HealthEntry struct {
	Parameter  string
	Label      string
	Score      float64
	Actual     float64
	OutOfRange bool
	Min        float64
	Max        float64
}

// HealthAssessment lists monitored parameters in canonical order.
type HealthAssessment []HealthEntry

// OutOfRangeCount returns how many parameters sit outside their safe range.
func (h HealthAssessment) OutOfRangeCount() int {
	n := 0
	for _, e := range h {
		if e.OutOfRange {
			n++
		}
	}
	return n
}

// Direction tells which way a feature pushed the prediction.
type Direction string

const (
	TowardFault   Direction = "toward_fault"
	AwayFromFault Direction = "away_from_fault"
)

// DirectionOf buckets a signed attribution. Zero counts as toward the fault.
func DirectionOf(value float64) Direction {
	if value >= 0 {
		return TowardFault
	}
	return AwayFromFault
}

// RankedEntry is an attribution annotated with its magnitude and bucket.
type RankedEntry struct {
	Feature   string
	Value     float64
	Magnitude float64
	Direction Direction
}

// RankedAttribution is sorted by magnitude, largest first.
type RankedAttribution []RankedEntry

// Toward returns the entries that push toward the predicted fault, in rank order.
func (r RankedAttribution) Toward() RankedAttribution {
	return r.filter(TowardFault)
}

// Away returns the entries that push away from the predicted fault, in rank order.
func (r RankedAttribution) Away() RankedAttribution {
	return r.filter(AwayFromFault)
}

func (r RankedAttribution) filter(d Direction) RankedAttribution {
	out := make(RankedAttribution, 0, len(r))
	for _, e := range r {
		if e.Direction == d {
			out = append(out, e)
		}
	}
	return out
}

// MaxMagnitude returns the largest magnitude. The second value is false for an empty ranking.
func (r RankedAttribution) MaxMagnitude() (float64, bool) {
	if len(r) == 0 {
		return 0, false
	}
	max := r[0].Magnitude
	for _, e := range r[1:] {
		if e.Magnitude > max {
			max = e.Magnitude
		}
	}
	return max, true
}

// BarWidths scales each magnitude to a half-width diverging bar (0..50).
// An empty ranking or an all-zero ranking yields zero widths.
func (r RankedAttribution) BarWidths() []float64 {
	widths := make([]float64, len(r))
	max, ok := r.MaxMagnitude()
	if !ok || max == 0 {
		return widths
	}
	for i, e := range r {
		widths[i] = e.Magnitude / max * 50
	}
	return widths
}

// Severity is the urgency tier shown on the prediction summary.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityNormal   Severity = "normal"
)

// Classification is the severity verdict for a prediction.
type Classification struct {
	Label         FaultLabel
	ConfidencePct float64
	Severity      Severity
	// HighConfidence marks predictions above 90% confidence.
	HighConfidence bool
}

// Priority orders maintenance work.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityCritical Priority = "critical"
)

// MaintenanceRecommendation is the action bundle shown for a fault label.
type MaintenanceRecommendation struct {
	Icon     string
	Title    string
	Priority Priority
	Actions  []string
}

// ProbabilitySlice is one class share of the probability chart, in percent.
type ProbabilitySlice struct {
	Label   string
	Percent float64
	Top     bool
}

// Report is the complete dashboard view-model for one diagnosis.
type Report struct {
	ID             string
	Reading        SensorReading
	Source         ReadingSource
	Prediction     PredictionResult
	Health         HealthAssessment
	Attribution    RankedAttribution
	Classification Classification
	Recommendation MaintenanceRecommendation
	Probabilities  []ProbabilitySlice
	// NoAttributions and NoProbabilities flag the "no data" placeholders.
	NoAttributions  bool
	NoProbabilities bool
	CreatedAt       time.Time
}

// DashboardState is everything the dashboard shows at one moment. Report is nil until the
// first successful diagnosis.
type DashboardState struct {
	Reading SensorReading
	Source  ReadingSource
	Banner  string
	Report  *Report
}
