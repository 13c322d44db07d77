// ABOUTME: Tests for raw input validation.
// ABOUTME: Covers inclusive bounds, parse failures, unknown keys, and error collection.
package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

func codeOf(t *testing.T, err error) Code {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	return verr.Code
}

func TestValidateBounds(t *testing.T) {
	for _, def := range models.Definitions() {
		t.Run(def.Key, func(t *testing.T) {
			for _, v := range []float64{def.Min, def.Max} {
				raw := models.FormatBound(v)
				got, err := Validate(def.Key, raw)
				if err != nil {
					t.Fatalf("Validate(%s, %s) unexpected error: %v", def.Key, raw, err)
				}
				if got != v {
					t.Errorf("Validate(%s, %s) = %v, want %v", def.Key, raw, got, v)
				}
			}

			eps := 0.01
			if def.Type == models.Integer {
				eps = 1
			}
			for _, v := range []float64{def.Min - eps, def.Max + eps} {
				raw := models.FormatBound(v)
				_, err := Validate(def.Key, raw)
				if err == nil {
					t.Fatalf("Validate(%s, %s) expected range error", def.Key, raw)
				}
				if c := codeOf(t, err); c != RangeError {
					t.Errorf("Validate(%s, %s) code = %s, want %s", def.Key, raw, c, RangeError)
				}
			}
		})
	}
}

func TestValidateRangeMessage(t *testing.T) {
	_, err := Validate("ritmo_cardiaco", "250")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "Ritmo Cardíaco fuera del rango válido (30-200 ppm)"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	_, err = Validate("peso", "500")
	want = "Peso fuera del rango válido (0.1-400 kg)"
	if err == nil || err.Error() != want {
		t.Errorf("message = %v, want %q", err, want)
	}
}

func TestValidateParseError(t *testing.T) {
	tests := []struct {
		key string
		raw string
	}{
		{"ritmo_cardiaco", "abc"},
		{"ritmo_cardiaco", "72.5"},
		{"ritmo_cardiaco", ""},
		{"peso", "NaN"},
		{"peso", "inf"},
		{"colesterol", "12,5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.raw, func(t *testing.T) {
			_, err := Validate(tt.key, tt.raw)
			if err == nil {
				t.Fatal("expected parse error")
			}
			if c := codeOf(t, err); c != ParseError {
				t.Errorf("code = %s, want %s", c, ParseError)
			}
		})
	}
}

func TestValidateParseMessage(t *testing.T) {
	_, err := Validate("ritmo_cardiaco", "abc")
	want := "Error: 'abc' no es un valor numérico válido para ritmo cardiaco."
	if err == nil || err.Error() != want {
		t.Errorf("message = %v, want %q", err, want)
	}
}

func TestValidateTrimsWhitespace(t *testing.T) {
	got, err := Validate("altura", " 175.5 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 175.5 {
		t.Errorf("got %v, want 175.5", got)
	}
}

func TestValidateUnknownMetric(t *testing.T) {
	_, err := Validate("nonexistent_key", "5")
	if err == nil {
		t.Fatal("expected error")
	}
	if c := codeOf(t, err); c != UnknownMetric {
		t.Errorf("code = %s, want %s", c, UnknownMetric)
	}
}

func TestValidateKindBloodPressureCollectsErrors(t *testing.T) {
	values, errs := ValidateKind(models.KindBloodPressure, map[string]string{
		models.KeySystolic:  "300",
		models.KeyDiastolic: "80",
	})
	if values != nil {
		t.Errorf("expected no values, got %v", values)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Key != models.KeySystolic {
		t.Errorf("error key = %s, want %s", errs[0].Key, models.KeySystolic)
	}

	_, errs = ValidateKind(models.KindBloodPressure, map[string]string{
		models.KeySystolic:  "300",
		models.KeyDiastolic: "x",
	})
	if len(errs) != 2 {
		t.Fatalf("expected both fields to fail, got %d", len(errs))
	}
	if !strings.Contains(errs.Error(), "; ") {
		t.Errorf("combined message should join both: %q", errs.Error())
	}
}

func TestValidateKindSuccess(t *testing.T) {
	values, errs := ValidateKind(models.KindBloodPressure, map[string]string{
		models.KeySystolic:  "120",
		models.KeyDiastolic: "80",
	})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if values[models.FieldSystolic] != 120 || values[models.FieldDiastolic] != 80 {
		t.Errorf("values = %v", values)
	}

	values, errs = ValidateKind(models.KindWeight, map[string]string{"peso": "70"})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if values[models.FieldValue] != 70 {
		t.Errorf("values = %v", values)
	}
}

func TestValidateKindUnknown(t *testing.T) {
	_, errs := ValidateKind(models.Kind("steps"), nil)
	if len(errs) != 1 || errs[0].Code != UnknownMetric {
		t.Errorf("expected single unknown metric error, got %v", errs)
	}
}

func TestRawFor(t *testing.T) {
	raw, err := RawFor(models.KindBloodPressure, "120", "80")
	if err != nil {
		t.Fatalf("RawFor failed: %v", err)
	}
	if raw[models.KeySystolic] != "120" || raw[models.KeyDiastolic] != "80" {
		t.Errorf("raw = %v", raw)
	}

	if _, err := RawFor(models.KindBloodPressure, "120"); err == nil {
		t.Error("expected error for missing diastolic value")
	}
}

func TestValidateMeasurement(t *testing.T) {
	owner := uuid.New()
	ok := models.NewMeasurement(owner, models.KindBloodPressure, map[string]float64{
		models.FieldSystolic: 120, models.FieldDiastolic: 80,
	})
	if errs := ValidateMeasurement(ok); len(errs) != 0 {
		t.Fatalf("valid record rejected: %v", errs.Messages())
	}

	tests := []struct {
		name string
		m    *models.Measurement
		key  string
		code Code
	}{
		{"non-integer heart rate", models.NewMeasurement(owner, models.KindHeartRate, map[string]float64{models.FieldValue: 72.5}), "ritmo_cardiaco", ParseError},
		{"heart rate above range", models.NewMeasurement(owner, models.KindHeartRate, map[string]float64{models.FieldValue: 5000}), "ritmo_cardiaco", RangeError},
		{"zero height", models.NewMeasurement(owner, models.KindHeight, map[string]float64{models.FieldValue: 0}), "altura", RangeError},
		{"NaN weight", models.NewMeasurement(owner, models.KindWeight, map[string]float64{models.FieldValue: math.NaN()}), "peso", ParseError},
		{"missing diastolic", models.NewMeasurement(owner, models.KindBloodPressure, map[string]float64{models.FieldSystolic: 120}), models.KeyDiastolic, ParseError},
		{"extra field", models.NewMeasurement(owner, models.KindWeight, map[string]float64{models.FieldValue: 70, "grasa": 20}), "grasa", UnknownMetric},
		{"unknown kind", models.NewMeasurement(owner, models.Kind("glucosa"), map[string]float64{models.FieldValue: 1}), "glucosa", UnknownMetric},
		{"nil id", &models.Measurement{Record: models.Record{Timestamp: ok.Timestamp}, Kind: models.KindWeight, Values: map[string]float64{models.FieldValue: 70}}, "id", RecordError},
		{"zero timestamp", &models.Measurement{Record: models.Record{ID: uuid.New()}, Kind: models.KindWeight, Values: map[string]float64{models.FieldValue: 70}}, "timestamp", RecordError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateMeasurement(tt.m)
			for _, e := range errs {
				if e.Key == tt.key && e.Code == tt.code {
					return
				}
			}
			t.Errorf("expected %s error for %s, got %v", tt.code, tt.key, errs.Messages())
		})
	}
}

func TestValidateMeasurementCollectsAll(t *testing.T) {
	m := &models.Measurement{
		Kind:   models.KindBloodPressure,
		Values: map[string]float64{models.FieldSystolic: 300, models.FieldDiastolic: 10},
	}
	errs := ValidateMeasurement(m)
	if len(errs) != 4 {
		t.Errorf("expected id, timestamp and two range errors, got %v", errs.Messages())
	}
}
