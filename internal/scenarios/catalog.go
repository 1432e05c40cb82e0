package scenarios

import (
	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

// InitialPreset is the reading shown before any interaction.
const InitialPreset = "Normal - Cruise"

// Categories lists the cyclable tiers in display order.
var Categories = []models.Category{models.CategoryNormal, models.CategoryMinor, models.CategoryCritical}

// baseNormal is the cruise reading every preset is derived from.
func baseNormal() models.SensorReading {
	return models.ReadingFromMap(map[string]float64{
		"Shaft_RPM":              950,
		"Engine_Load":            70,
		"Fuel_Flow":              120,
		"Air_Pressure":           2.5,
		"Ambient_Temp":           25,
		"Oil_Temp":               75,
		"Oil_Pressure":           3.5,
		"Vibration_X":            0.05,
		"Vibration_Y":            0.05,
		"Vibration_Z":            0.05,
		"Cylinder1_Pressure":     145,
		"Cylinder1_Exhaust_Temp": 420,
		"Cylinder2_Pressure":     145,
		"Cylinder2_Exhaust_Temp": 420,
		"Cylinder3_Pressure":     145,
		"Cylinder3_Exhaust_Temp": 420,
		"Cylinder4_Pressure":     145,
		"Cylinder4_Exhaust_Temp": 420,
	})
}

// derive applies overrides on top of the cruise reading.
func derive(overrides map[models.SensorField]float64) models.SensorReading {
	r := baseNormal()
	for f, v := range overrides {
		r[f] = v
	}
	return r
}

func exhaust(v float64) map[models.SensorField]float64 {
	out := make(map[models.SensorField]float64, len(models.ExhaustTempFields))
	for _, f := range models.ExhaustTempFields {
		out[f] = v
	}
	return out
}

func merge(maps ...map[models.SensorField]float64) map[models.SensorField]float64 {
	out := make(map[models.SensorField]float64)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Catalog is the immutable preset library grouped by category.
type Catalog struct {
	presets map[models.Category][]models.ScenarioPreset
}

// DefaultCatalog returns the built-in engine scenarios.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[models.Category][]models.ScenarioPreset{
		models.CategoryNormal: {
			{Name: "Normal - Idle", Description: "Low load operation", Values: derive(map[models.SensorField]float64{
				models.FieldEngineLoad: 45, models.FieldShaftRPM: 850,
			})},
			{Name: "Normal - Cruise", Description: "Standard operation", Values: baseNormal()},
			{Name: "Normal - High Load", Description: "Heavy load operation", Values: derive(map[models.SensorField]float64{
				models.FieldEngineLoad: 95, models.FieldShaftRPM: 1050, models.FieldFuelFlow: 145,
			})},
		},
		models.CategoryMinor: {
			{Name: "Oil Degradation", Description: "Elevated oil temp & low pressure", Values: derive(map[models.SensorField]float64{
				models.FieldOilTemp: 102, models.FieldOilPressure: 2.8,
			})},
			{Name: "Cooling Issue", Description: "Slightly elevated temperatures", Values: derive(merge(
				map[models.SensorField]float64{models.FieldOilTemp: 92, models.FieldAmbientTemp: 32},
				exhaust(460),
			))},
			{Name: "Fuel Injection", Description: "Low fuel flow", Values: derive(map[models.SensorField]float64{
				models.FieldFuelFlow: 85, models.FieldEngineLoad: 75,
			})},
			{Name: "Air Intake", Description: "Reduced air pressure", Values: derive(map[models.SensorField]float64{
				models.FieldAirPressure: 2.0, models.FieldEngineLoad: 75,
			})},
		},
		models.CategoryCritical: {
			{Name: "Bearing Wear", Description: "High vibration levels", Values: derive(map[models.SensorField]float64{
				models.FieldVibrationX: 0.45, models.FieldVibrationY: 0.35, models.FieldVibrationZ: 0.30,
			})},
			{Name: "Turbocharger Fault", Description: "Very high exhaust temps", Values: derive(merge(
				exhaust(550),
				map[models.SensorField]float64{models.FieldAirPressure: 2.0},
			))},
			{Name: "Severe Vibration", Description: "Critical vibration anomaly", Values: derive(merge(
				map[models.SensorField]float64{models.FieldVibrationX: 0.40, models.FieldVibrationY: 0.38, models.FieldVibrationZ: 0.35},
				exhaust(480),
			))},
			{Name: "Multiple Faults", Description: "Combined critical conditions", Values: derive(merge(
				map[models.SensorField]float64{models.FieldVibrationX: 0.35, models.FieldOilTemp: 105, models.FieldOilPressure: 2.3},
				exhaust(530),
			))},
		},
	})
}

// NewCatalog builds a catalog, stamping each preset with its category.
func NewCatalog(presets map[models.Category][]models.ScenarioPreset) *Catalog {
	c := &Catalog{presets: make(map[models.Category][]models.ScenarioPreset, len(presets))}
	for cat, list := range presets {
		if cat == models.CategoryCustom {
			continue
		}
		copied := make([]models.ScenarioPreset, 0, len(list))
		for _, p := range list {
			p.Category = cat
			p.Values = p.Values.Clone()
			copied = append(copied, p)
		}
		c.presets[cat] = copied
	}
	return c
}

// Presets returns copies of the presets in a category.
func (c *Catalog) Presets(cat models.Category) []models.ScenarioPreset {
	list := c.presets[cat]
	out := make([]models.ScenarioPreset, 0, len(list))
	for _, p := range list {
		p.Values = p.Values.Clone()
		out = append(out, p)
	}
	return out
}

// Count returns the number of presets in a category.
func (c *Catalog) Count(cat models.Category) int {
	return len(c.presets[cat])
}

// At returns the preset at index i of a category.
func (c *Catalog) At(cat models.Category, i int) (models.ScenarioPreset, bool) {
	list := c.presets[cat]
	if i < 0 || i >= len(list) {
		return models.ScenarioPreset{}, false
	}
	p := list[i]
	p.Values = p.Values.Clone()
	return p, true
}

// Find looks a preset up by name across all categories.
func (c *Catalog) Find(name string) (models.ScenarioPreset, bool) {
	for _, cat := range Categories {
		for i, p := range c.presets[cat] {
			if p.Name == name {
				return c.At(cat, i)
			}
		}
	}
	return models.ScenarioPreset{}, false
}
