package models

// Category groups scenario presets by severity tier.
type Category string

const (
	CategoryNormal   Category = "normal"
	CategoryMinor    Category = "minor"
	CategoryCritical Category = "critical"
	// CategoryCustom is entered by hand edits. It has no presets and cannot be cycled.
	CategoryCustom Category = "custom"
)

// ScenarioPreset is a named, complete reading for a canonical operating condition.
type ScenarioPreset struct {
	Name        string
	Description string
	Category    Category
	Values      SensorReading
}

// SourceKind distinguishes preset readings from hand-edited ones.
type SourceKind int

const (
	SourcePreset SourceKind = iota
	SourceCustom
)

// ReadingSource records where the current reading came from.
type ReadingSource struct {
	Kind SourceKind
	// Preset is set only when Kind is SourcePreset.
	Preset string
}

// PresetSource returns the source for a loaded preset.
func PresetSource(name string) ReadingSource {
	return ReadingSource{Kind: SourcePreset, Preset: name}
}

// CustomSource returns the source for a hand-edited reading.
func CustomSource() ReadingSource {
	return ReadingSource{Kind: SourceCustom}
}

// IsCustom reports whether the reading was edited by hand.
func (s ReadingSource) IsCustom() bool {
	return s.Kind == SourceCustom
}

// Name is the label shown as "Current Scenario".
func (s ReadingSource) Name() string {
	if s.Kind == SourceCustom {
		return "Custom"
	}
	return s.Preset
}
