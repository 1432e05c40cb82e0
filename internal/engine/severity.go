package engine

import (
	"errors"
	"math"
	"sort"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

const (
	// urgentConfidencePct escalates any non-normal prediction to critical.
	urgentConfidencePct = 98.0
	// highConfidencePct drives the high-confidence badge.
	highConfidencePct = 90.0
)

// ErrNoProbabilities reports an empty or absent probability distribution.
var ErrNoProbabilities = errors.New("no probability data")

// Confidence returns the top class probability as a percentage. NaN entries are ignored;
// a distribution with no usable value reports ErrNoProbabilities.
func Confidence(probabilities map[string]float64) (float64, error) {
	if len(probabilities) == 0 {
		return 0, ErrNoProbabilities
	}
	found := false
	max := 0.0
	for _, p := range probabilities {
		if math.IsNaN(p) {
			continue
		}
		if !found || p > max {
			max = p
			found = true
		}
	}
	if !found {
		return 0, ErrNoProbabilities
	}
	return max * 100, nil
}

// Classify derives the severity tier for a predicted label. Rules apply in order:
// critical label set, then the urgent-confidence override for non-normal labels,
// then normal, then warning.
func Classify(label models.FaultLabel, probabilities map[string]float64) (models.Classification, error) {
	confidence, err := Confidence(probabilities)
	if err != nil {
		return models.Classification{}, err
	}

	return models.Classification{
		Label:          label,
		ConfidencePct:  confidence,
		Severity:       SeverityFor(label, confidence),
		HighConfidence: confidence > highConfidencePct,
	}, nil
}

// SeverityFor applies the tier rules to a label and a confidence in percent.
func SeverityFor(label models.FaultLabel, confidencePct float64) models.Severity {
	switch {
	case label.IsCritical():
		return models.SeverityCritical
	case confidencePct >= urgentConfidencePct && !label.IsNormal():
		return models.SeverityCritical
	case label.IsNormal():
		return models.SeverityNormal
	default:
		return models.SeverityWarning
	}
}

// ProbabilitySlices returns the chart shares in percent. Known labels come first in class
// order, then any other labels sorted by name. The top share is marked.
func ProbabilitySlices(probabilities map[string]float64) []models.ProbabilitySlice {
	if len(probabilities) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(probabilities))
	slices := make([]models.ProbabilitySlice, 0, len(probabilities))
	add := func(name string) {
		p, ok := probabilities[name]
		if !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		slices = append(slices, models.ProbabilitySlice{Label: name, Percent: p * 100})
	}
	for _, l := range models.FaultLabels {
		add(l.String())
	}
	var rest []string
	for name := range probabilities {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		add(name)
	}

	top := -1
	for i := range slices {
		if math.IsNaN(slices[i].Percent) {
			continue
		}
		if top < 0 || slices[i].Percent > slices[top].Percent {
			top = i
		}
	}
	if top >= 0 {
		slices[top].Top = true
	}
	return slices
}
