// ABOUTME: Metric kind enum and the static registry of measurement definitions.
// ABOUTME: Single source of truth for field names, numeric types, ranges, units and labels.
package models

import (
	"fmt"
	"sort"
)

// Kind identifies one of the seven tracked measurement kinds.
type Kind string

const (
	KindHeartRate     Kind = "ritmo_cardiaco"
	KindBloodPressure Kind = "presion_arterial"
	KindBloodSugar    Kind = "nivel_azucar"
	KindCholesterol   Kind = "colesterol"
	KindBloodOxygen   Kind = "oxigeno_sangre"
	KindWeight        Kind = "peso"
	KindHeight        Kind = "altura"
)

// AllKinds lists every measurement kind in dashboard order.
var AllKinds = []Kind{
	KindHeartRate, KindBloodPressure, KindBloodSugar, KindCholesterol,
	KindBloodOxygen, KindWeight, KindHeight,
}

// Field names of the persisted value columns.
const (
	FieldValue     = "value"
	FieldSystolic  = "systolic"
	FieldDiastolic = "diastolic"
)

// Registry keys for the two blood pressure sub-fields.
const (
	KeySystolic  = "presion_sistolica"
	KeyDiastolic = "presion_diastolica"
)

// NumericType is the parse type of a metric value.
type NumericType int

const (
	Integer NumericType = iota
	Float
)

func (t NumericType) String() string {
	if t == Integer {
		return "integer"
	}
	return "float"
}

// MetricDefinition describes one validated input field.
type MetricDefinition struct {
	Key   string
	Label string
	Unit  string
	Type  NumericType
	Min   float64
	Max   float64
	Kind  Kind
	Field string
}

var definitions = map[string]MetricDefinition{
	string(KindHeartRate): {
		Key: string(KindHeartRate), Label: "Ritmo Cardíaco", Unit: "ppm",
		Type: Integer, Min: 30, Max: 200, Kind: KindHeartRate, Field: FieldValue,
	},
	KeySystolic: {
		Key: KeySystolic, Label: "Presión Sistólica", Unit: "mmHg",
		Type: Integer, Min: 70, Max: 250, Kind: KindBloodPressure, Field: FieldSystolic,
	},
	KeyDiastolic: {
		Key: KeyDiastolic, Label: "Presión Diastólica", Unit: "mmHg",
		Type: Integer, Min: 40, Max: 150, Kind: KindBloodPressure, Field: FieldDiastolic,
	},
	string(KindBloodSugar): {
		Key: string(KindBloodSugar), Label: "Nivel de Azúcar", Unit: "mg/dL",
		Type: Float, Min: 50, Max: 600, Kind: KindBloodSugar, Field: FieldValue,
	},
	string(KindCholesterol): {
		Key: string(KindCholesterol), Label: "Colesterol", Unit: "mg/dL",
		Type: Float, Min: 60, Max: 500, Kind: KindCholesterol, Field: FieldValue,
	},
	string(KindBloodOxygen): {
		Key: string(KindBloodOxygen), Label: "Oxígeno en Sangre", Unit: "%",
		Type: Float, Min: 70, Max: 100, Kind: KindBloodOxygen, Field: FieldValue,
	},
	string(KindWeight): {
		Key: string(KindWeight), Label: "Peso", Unit: "kg",
		Type: Float, Min: 0.1, Max: 400, Kind: KindWeight, Field: FieldValue,
	},
	string(KindHeight): {
		Key: string(KindHeight), Label: "Altura", Unit: "cm",
		Type: Float, Min: 10, Max: 300, Kind: KindHeight, Field: FieldValue,
	},
}

// Lookup returns the definition registered under key.
func Lookup(key string) (MetricDefinition, bool) {
	def, ok := definitions[key]
	return def, ok
}

// Definitions returns every registered definition sorted by key.
func Definitions() []MetricDefinition {
	defs := make([]MetricDefinition, 0, len(definitions))
	for _, d := range definitions {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// KindFields returns the definitions persisted into a record of kind k,
// in column order.
func KindFields(k Kind) []MetricDefinition {
	switch k {
	case KindBloodPressure:
		return []MetricDefinition{definitions[KeySystolic], definitions[KeyDiastolic]}
	case KindHeartRate, KindBloodSugar, KindCholesterol, KindBloodOxygen, KindWeight, KindHeight:
		return []MetricDefinition{definitions[string(k)]}
	}
	return nil
}

// Valid reports whether k is one of the seven known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindHeartRate, KindBloodPressure, KindBloodSugar, KindCholesterol,
		KindBloodOxygen, KindWeight, KindHeight:
		return true
	}
	return false
}

// Table returns the relational table backing kind k.
func (k Kind) Table() string {
	switch k {
	case KindHeartRate:
		return "heart_rate"
	case KindBloodPressure:
		return "blood_pressure"
	case KindBloodSugar:
		return "blood_sugar"
	case KindCholesterol:
		return "cholesterol"
	case KindBloodOxygen:
		return "blood_oxygen"
	case KindWeight:
		return "weight"
	case KindHeight:
		return "height"
	}
	return ""
}

// Title is the menu title shown when choosing what to record.
func (k Kind) Title() string {
	switch k {
	case KindHeartRate:
		return "Ritmo Cardíaco (ppm)"
	case KindBloodPressure:
		return "Presión Arterial (Sistólica/Diastólica)"
	case KindBloodSugar:
		return "Nivel de Azúcar (mg/dL)"
	case KindCholesterol:
		return "Colesterol (mg/dL)"
	case KindBloodOxygen:
		return "Oxígeno en Sangre (%)"
	case KindWeight:
		return "Peso (kg)"
	case KindHeight:
		return "Altura (cm)"
	}
	return string(k)
}

// ParseKind converts s into a Kind, accepting the short alias "bp".
func ParseKind(s string) (Kind, error) {
	if s == "bp" {
		return KindBloodPressure, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown metric kind: %s", s)
	}
	return k, nil
}
