package api

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

// ReadingFromStruct extracts the optional "reading" object of a request. Missing fields
// default to zero and unknown keys are dropped. ok is false when no reading was supplied.
func ReadingFromStruct(req *structpb.Struct) (reading models.SensorReading, ok bool, err error) {
	value, present := req.GetFields()["reading"]
	if !present {
		return nil, false, nil
	}
	obj := value.GetStructValue()
	if obj == nil {
		return nil, false, fmt.Errorf("reading must be an object")
	}
	values := make(map[string]float64, len(obj.GetFields()))
	for key, v := range obj.GetFields() {
		n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
		if !isNumber {
			return nil, false, fmt.Errorf("reading.%s must be a number", key)
		}
		values[key] = n.NumberValue
	}
	return models.ReadingFromMap(values), true, nil
}

// CategoryFromStruct reads the "category" string of a CycleScenario request.
func CategoryFromStruct(req *structpb.Struct) (models.Category, error) {
	s, err := stringField(req, "category")
	if err != nil {
		return "", err
	}
	return models.Category(s), nil
}

// EditFromStruct reads the "field" and "value" of an EditField request.
func EditFromStruct(req *structpb.Struct) (string, float64, error) {
	field, err := stringField(req, "field")
	if err != nil {
		return "", 0, err
	}
	value, ok := req.GetFields()["value"]
	if !ok {
		return "", 0, fmt.Errorf("value is required")
	}
	n, isNumber := value.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return "", 0, fmt.Errorf("value must be a number")
	}
	return field, n.NumberValue, nil
}

func stringField(req *structpb.Struct, name string) (string, error) {
	value, ok := req.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%s is required", name)
	}
	s, isString := value.GetKind().(*structpb.Value_StringValue)
	if !isString || s.StringValue == "" {
		return "", fmt.Errorf("%s must be a non-empty string", name)
	}
	return s.StringValue, nil
}

// ToStructReport converts a report into its wire representation.
func ToStructReport(r models.Report) (*structpb.Struct, error) {
	return structpb.NewStruct(reportMap(r))
}

// ToStructDashboard converts the dashboard state. has_report is false until a diagnosis succeeds.
func ToStructDashboard(state models.DashboardState) (*structpb.Struct, error) {
	out := map[string]any{
		"source":     sourceMap(state.Source),
		"reading":    readingMap(state.Reading),
		"banner":     state.Banner,
		"has_report": state.Report != nil,
	}
	if state.Report != nil {
		out["report"] = reportMap(*state.Report)
	}
	return structpb.NewStruct(out)
}

// ToStructPreset converts a loaded preset.
func ToStructPreset(p models.ScenarioPreset) (*structpb.Struct, error) {
	return structpb.NewStruct(presetMap(p))
}

// ToStructCatalog groups presets by category, keeping the order categories first appear in.
func ToStructCatalog(presets []models.ScenarioPreset) (*structpb.Struct, error) {
	var order []models.Category
	grouped := make(map[models.Category][]any)
	for _, p := range presets {
		if _, seen := grouped[p.Category]; !seen {
			order = append(order, p.Category)
		}
		grouped[p.Category] = append(grouped[p.Category], presetMap(p))
	}
	categories := make([]any, 0, len(order))
	for _, cat := range order {
		categories = append(categories, map[string]any{
			"name":    string(cat),
			"presets": grouped[cat],
		})
	}
	return structpb.NewStruct(map[string]any{"categories": categories})
}

func presetMap(p models.ScenarioPreset) map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"category":    string(p.Category),
		"reading":     readingMap(p.Values),
	}
}

func readingMap(r models.SensorReading) map[string]any {
	out := make(map[string]any, len(models.SensorFields))
	for _, f := range models.SensorFields {
		out[string(f)] = r.Get(f)
	}
	return out
}

func sourceMap(s models.ReadingSource) map[string]any {
	kind := "preset"
	if s.IsCustom() {
		kind = "custom"
	}
	return map[string]any{"kind": kind, "name": s.Name()}
}

func reportMap(r models.Report) map[string]any {
	label := r.Prediction.RawLabel
	if label == "" {
		label = r.Prediction.Label.String()
	}

	probabilities := make(map[string]any, len(r.Prediction.Probabilities))
	for k, v := range r.Prediction.Probabilities {
		probabilities[k] = v
	}

	health := make([]any, 0, len(r.Health))
	for _, h := range r.Health {
		health = append(health, map[string]any{
			"parameter":    h.Parameter,
			"label":        h.Label,
			"score":        h.Score,
			"actual":       h.Actual,
			"out_of_range": h.OutOfRange,
			"min":          h.Min,
			"max":          h.Max,
		})
	}

	widths := r.Attribution.BarWidths()
	attribution := make([]any, 0, len(r.Attribution))
	for i, e := range r.Attribution {
		attribution = append(attribution, map[string]any{
			"feature":   e.Feature,
			"value":     e.Value,
			"magnitude": e.Magnitude,
			"direction": string(e.Direction),
			"bar_width": widths[i],
		})
	}

	slices := make([]any, 0, len(r.Probabilities))
	for _, s := range r.Probabilities {
		slices = append(slices, map[string]any{
			"label":   s.Label,
			"percent": s.Percent,
			"top":     s.Top,
		})
	}

	actions := make([]any, 0, len(r.Recommendation.Actions))
	for _, a := range r.Recommendation.Actions {
		actions = append(actions, a)
	}

	return map[string]any{
		"id":         r.ID,
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"source":     sourceMap(r.Source),
		"reading":    readingMap(r.Reading),
		"prediction": map[string]any{
			"label":         label,
			"known":         r.Prediction.Label != models.FaultUnknown,
			"probabilities": probabilities,
		},
		"classification": map[string]any{
			"label":           label,
			"confidence_pct":  r.Classification.ConfidencePct,
			"severity":        string(r.Classification.Severity),
			"high_confidence": r.Classification.HighConfidence,
		},
		"health":             health,
		"out_of_range_count": r.Health.OutOfRangeCount(),
		"attribution":        attribution,
		"no_attributions":    r.NoAttributions,
		"probability_slices": slices,
		"no_probabilities":   r.NoProbabilities,
		"recommendation": map[string]any{
			"icon":     r.Recommendation.Icon,
			"title":    r.Recommendation.Title,
			"priority": string(r.Recommendation.Priority),
			"actions":  actions,
		},
	}
}
