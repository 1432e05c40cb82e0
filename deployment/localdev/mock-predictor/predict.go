package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/aimsmarine/aims-diagnostics/internal/engine"
	"github.com/aimsmarine/aims-diagnostics/internal/models"
	"github.com/aimsmarine/aims-diagnostics/internal/scenarios"
)

const topProbability = 0.92

// decodeReading requires every sensor field, like the real request model.
func decodeReading(r *http.Request) (models.SensorReading, error) {
	var raw map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	for _, f := range models.SensorFields {
		if _, ok := raw[string(f)]; !ok {
			return nil, fmt.Errorf("field required: %s", f)
		}
	}
	return models.ReadingFromMap(raw), nil
}

// classify is a threshold heuristic that labels the built-in presets the way the trained
// model does.
func classify(r models.SensorReading) models.FaultLabel {
	vibX := r.Get(models.FieldVibrationX)
	vibMax := math.Max(vibX, math.Max(r.Get(models.FieldVibrationY), r.Get(models.FieldVibrationZ)))
	exhaust := engine.AverageExhaustTemp(r)
	oilTemp := r.Get(models.FieldOilTemp)

	switch {
	case exhaust >= 540:
		return models.FaultTurbocharger
	case vibX >= 0.4 && exhaust >= 470:
		return models.FaultVibration
	case vibMax >= 0.3:
		return models.FaultBearingWear
	case oilTemp >= 100:
		return models.FaultLubricationOil
	case oilTemp >= 90 || exhaust >= 450:
		return models.FaultCoolingSystem
	case r.Get(models.FieldFuelFlow) < 100:
		return models.FaultFuelInjection
	case r.Get(models.FieldAirPressure) < 2.2:
		return models.FaultAirIntake
	default:
		return models.FaultNormal
	}
}

// attributions scores each field by its relative deviation from the cruise reading.
func attributions(r models.SensorReading) []models.Attribution {
	base := cruise()
	out := make([]models.Attribution, 0, len(models.SensorFields))
	for _, f := range models.SensorFields {
		ref := base.Get(f)
		if ref == 0 {
			ref = 1
		}
		v := (r.Get(f) - ref) / math.Abs(ref)
		out = append(out, models.Attribution{Feature: string(f), Value: math.Round(v*1000) / 1000})
	}
	return out
}

func cruise() models.SensorReading {
	p, _ := scenarios.DefaultCatalog().Find(scenarios.InitialPreset)
	return p.Values
}

// predict renders the response body. shap_values keep the canonical field order.
func predict(r models.SensorReading) []byte {
	label := classify(r)
	rest := (1 - topProbability) / float64(len(models.FaultLabels)-1)

	var buf bytes.Buffer
	buf.WriteString(`{"prediction_label":`)
	writeString(&buf, label.String())
	buf.WriteString(`,"probabilities":{`)
	for i, l := range models.FaultLabels {
		if i > 0 {
			buf.WriteByte(',')
		}
		p := rest
		if l == label {
			p = topProbability
		}
		writeString(&buf, l.String())
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(p, 'f', -1, 64))
	}
	buf.WriteString(`},"shap_values":{`)
	for i, a := range attributions(r) {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, a.Feature)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(a.Value, 'f', -1, 64))
	}
	buf.WriteString("}}")
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}
