package models

// SensorField names one of the engine sensor channels accepted by the prediction service.
type SensorField string

const (
	FieldShaftRPM            SensorField = "Shaft_RPM"
	FieldEngineLoad          SensorField = "Engine_Load"
	FieldFuelFlow            SensorField = "Fuel_Flow"
	FieldAirPressure         SensorField = "Air_Pressure"
	FieldAmbientTemp         SensorField = "Ambient_Temp"
	FieldOilTemp             SensorField = "Oil_Temp"
	FieldOilPressure         SensorField = "Oil_Pressure"
	FieldVibrationX          SensorField = "Vibration_X"
	FieldVibrationY          SensorField = "Vibration_Y"
	FieldVibrationZ          SensorField = "Vibration_Z"
	FieldCylinder1Pressure   SensorField = "Cylinder1_Pressure"
	FieldCylinder1ExhaustTmp SensorField = "Cylinder1_Exhaust_Temp"
	FieldCylinder2Pressure   SensorField = "Cylinder2_Pressure"
	FieldCylinder2ExhaustTmp SensorField = "Cylinder2_Exhaust_Temp"
	FieldCylinder3Pressure   SensorField = "Cylinder3_Pressure"
	FieldCylinder3ExhaustTmp SensorField = "Cylinder3_Exhaust_Temp"
	FieldCylinder4Pressure   SensorField = "Cylinder4_Pressure"
	FieldCylinder4ExhaustTmp SensorField = "Cylinder4_Exhaust_Temp"
)

// SensorFields lists every field in the feature order the model was trained on.
var SensorFields = []SensorField{
	FieldShaftRPM,
	FieldEngineLoad,
	FieldFuelFlow,
	FieldAirPressure,
	FieldAmbientTemp,
	FieldOilTemp,
	FieldOilPressure,
	FieldVibrationX,
	FieldVibrationY,
	FieldVibrationZ,
	FieldCylinder1Pressure,
	FieldCylinder1ExhaustTmp,
	FieldCylinder2Pressure,
	FieldCylinder2ExhaustTmp,
	FieldCylinder3Pressure,
	FieldCylinder3ExhaustTmp,
	FieldCylinder4Pressure,
	FieldCylinder4ExhaustTmp,
}

// ExhaustTempFields are the per-cylinder exhaust temperatures averaged by the health overview.
var ExhaustTempFields = []SensorField{
	FieldCylinder1ExhaustTmp,
	FieldCylinder2ExhaustTmp,
	FieldCylinder3ExhaustTmp,
	FieldCylinder4ExhaustTmp,
}

// FieldInfo carries display metadata for a sensor field.
type FieldInfo struct {
	Label string
	Unit  string
}

var fieldInfo = map[SensorField]FieldInfo{
	FieldShaftRPM:            {"Shaft RPM", "rpm"},
	FieldEngineLoad:          {"Engine Load", "%"},
	FieldFuelFlow:            {"Fuel Flow", "L/h"},
	FieldAirPressure:         {"Air Pressure", "bar"},
	FieldAmbientTemp:         {"Ambient Temperature", "°C"},
	FieldOilTemp:             {"Oil Temperature", "°C"},
	FieldOilPressure:         {"Oil Pressure", "bar"},
	FieldVibrationX:          {"Vibration X", "mm/s"},
	FieldVibrationY:          {"Vibration Y", "mm/s"},
	FieldVibrationZ:          {"Vibration Z", "mm/s"},
	FieldCylinder1Pressure:   {"Cylinder 1 Pressure", "bar"},
	FieldCylinder1ExhaustTmp: {"Cylinder 1 Exhaust Temp", "°C"},
	FieldCylinder2Pressure:   {"Cylinder 2 Pressure", "bar"},
	FieldCylinder2ExhaustTmp: {"Cylinder 2 Exhaust Temp", "°C"},
	FieldCylinder3Pressure:   {"Cylinder 3 Pressure", "bar"},
	FieldCylinder3ExhaustTmp: {"Cylinder 3 Exhaust Temp", "°C"},
	FieldCylinder4Pressure:   {"Cylinder 4 Pressure", "bar"},
	FieldCylinder4ExhaustTmp: {"Cylinder 4 Exhaust Temp", "°C"},
}

// Info returns the label and unit for the field. Unknown fields echo their name.
func (f SensorField) Info() FieldInfo {
	if info, ok := fieldInfo[f]; ok {
		return info
	}
	return FieldInfo{Label: string(f)}
}

// ParseSensorField resolves a wire name into a known field.
func ParseSensorField(name string) (SensorField, bool) {
	f := SensorField(name)
	_, ok := fieldInfo[f]
	return f, ok
}

// SensorReading holds one value per sensor field. Absent fields read as zero.
type SensorReading map[SensorField]float64

// NewSensorReading returns a reading with all fields present and set to zero.
func NewSensorReading() SensorReading {
	r := make(SensorReading, len(SensorFields))
	for _, f := range SensorFields {
		r[f] = 0
	}
	return r
}

// ReadingFromMap builds a complete reading from wire keys, defaulting missing fields to zero
// and discarding keys that are not sensor fields.
func ReadingFromMap(values map[string]float64) SensorReading {
	r := NewSensorReading()
	for k, v := range values {
		if f, ok := ParseSensorField(k); ok {
			r[f] = v
		}
	}
	return r
}

// Get returns the value for f, or zero when absent.
func (r SensorReading) Get(f SensorField) float64 {
	return r[f]
}

// Clone returns an independent copy holding every field.
func (r SensorReading) Clone() SensorReading {
	out := NewSensorReading()
	for k, v := range r {
		out[k] = v
	}
	return out
}

// With returns a copy of the reading with f set to v.
func (r SensorReading) With(f SensorField, v float64) SensorReading {
	out := r.Clone()
	out[f] = v
	return out
}

// Wire renders the reading as the 18-key request body expected by the prediction service.
func (r SensorReading) Wire() map[string]float64 {
	out := make(map[string]float64, len(SensorFields))
	for _, f := range SensorFields {
		out[string(f)] = r.Get(f)
	}
	return out
}
