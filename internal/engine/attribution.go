package engine

import (
	"errors"
	"math"
	"sort"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

// DefaultTopK is the feature-importance window shown by the dashboard.
const DefaultTopK = 8

// ErrNoAttributions reports an empty or absent attribution map.
var ErrNoAttributions = errors.New("no attribution data")

// Rank orders attributions by absolute value, largest first. Equal magnitudes keep their
// input order. topK <= 0 disables truncation.
func Rank(attrs []models.Attribution, topK int) (models.RankedAttribution, error) {
	if len(attrs) == 0 {
		return nil, ErrNoAttributions
	}

	type indexed struct {
		entry models.RankedEntry
		pos   int
	}
	items := make([]indexed, 0, len(attrs))
	for i, a := range attrs {
		items = append(items, indexed{
			entry: models.RankedEntry{
				Feature:   a.Feature,
				Value:     a.Value,
				Magnitude: math.Abs(a.Value),
				Direction: models.DirectionOf(a.Value),
			},
			pos: i,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].entry.Magnitude != items[j].entry.Magnitude {
			return items[i].entry.Magnitude > items[j].entry.Magnitude
		}
		return items[i].pos < items[j].pos
	})

	if topK > 0 && len(items) > topK {
		items = items[:topK]
	}
	ranked := make(models.RankedAttribution, 0, len(items))
	for _, it := range items {
		ranked = append(ranked, it.entry)
	}
	return ranked, nil
}

// RankMap ranks an unordered attribution map. Keys are visited in sorted order so that
// ties resolve the same way on every call.
func RankMap(values map[string]float64, topK int) (models.RankedAttribution, error) {
	if len(values) == 0 {
		return nil, ErrNoAttributions
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]models.Attribution, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, models.Attribution{Feature: k, Value: values[k]})
	}
	return Rank(attrs, topK)
}
