// ABOUTME: Measurement model shared by all seven metric kinds.
// ABOUTME: A common Record base plus a kind tag and a field->value map.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record holds the fields every owned row carries.
type Record struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	UserID    uuid.UUID `json:"user_id" yaml:"user_id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Measurement is a single timestamped reading of one metric kind.
type Measurement struct {
	Record `yaml:",inline"`
	Kind   Kind               `json:"kind" yaml:"kind"`
	Values map[string]float64 `json:"values" yaml:"values"`
}

// NewMeasurement creates a Measurement with a generated UUID stamped now.
func NewMeasurement(userID uuid.UUID, kind Kind, values map[string]float64) *Measurement {
	return &Measurement{
		Record: Record{
			ID:        uuid.New(),
			UserID:    userID,
			Timestamp: time.Now(),
		},
		Kind:   kind,
		Values: values,
	}
}

// WithTimestamp sets a custom timestamp.
func (m *Measurement) WithTimestamp(t time.Time) *Measurement {
	m.Timestamp = t
	return m
}

// Value returns the single value of a one-field kind.
func (m *Measurement) Value() float64 {
	return m.Values[FieldValue]
}

// Systolic returns the systolic pressure of a blood pressure reading.
func (m *Measurement) Systolic() float64 {
	return m.Values[FieldSystolic]
}

// Diastolic returns the diastolic pressure of a blood pressure reading.
func (m *Measurement) Diastolic() float64 {
	return m.Values[FieldDiastolic]
}

// Display renders the values with their unit, e.g. "120/80 mmHg" or "72 ppm".
func (m *Measurement) Display() string {
	fields := KindFields(m.Kind)
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, def := range fields {
		parts = append(parts, FormatValue(def.Type, m.Values[def.Field]))
	}
	return strings.Join(parts, "/") + " " + fields[0].Unit
}

// FormatValue renders a stored value the way it was recorded: integers
// without decimals, floats with at least one decimal digit.
func FormatValue(t NumericType, v float64) string {
	if t == Integer {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// FormatBound renders a range bound for messages, e.g. "0.1" or "400".
func FormatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
