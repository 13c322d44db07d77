// ABOUTME: Parses and range-checks raw measurement input against the registry.
// ABOUTME: Collects every field error so callers can report them together.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

// Code classifies a validation failure.
type Code string

const (
	UnknownMetric Code = "unknown_metric"
	ParseError    Code = "parse_error"
	RangeError    Code = "range_error"
	RecordError   Code = "record_error"
)

// Error is a single recoverable validation failure.
type Error struct {
	Code    Code
	Key     string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errors is the collected set of failures for one submission.
type Errors []*Error

func (es Errors) Error() string {
	return strings.Join(es.Messages(), "; ")
}

// Messages returns the human-readable messages in field order.
func (es Errors) Messages() []string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return msgs
}

// Validate parses raw for the registry entry key and checks it against the
// inclusive [min, max] range.
func Validate(key, raw string) (float64, error) {
	def, ok := models.Lookup(key)
	if !ok {
		return 0, &Error{
			Code:    UnknownMetric,
			Key:     key,
			Message: fmt.Sprintf("Campo desconocido: %s", key),
		}
	}

	value, err := parse(def.Type, raw)
	if err != nil {
		return 0, &Error{
			Code:    ParseError,
			Key:     key,
			Message: fmt.Sprintf("Error: '%s' no es un valor numérico válido para %s.", raw, strings.ReplaceAll(key, "_", " ")),
		}
	}

	if err := checkRange(def, value); err != nil {
		return 0, err
	}
	return value, nil
}

func checkRange(def models.MetricDefinition, value float64) *Error {
	if value < def.Min || value > def.Max {
		return &Error{
			Code: RangeError,
			Key:  def.Key,
			Message: fmt.Sprintf("%s fuera del rango válido (%s-%s %s)",
				def.Label, models.FormatBound(def.Min), models.FormatBound(def.Max), def.Unit),
		}
	}
	return nil
}

func parse(t models.NumericType, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if t == models.Integer {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %s", raw)
	}
	return f, nil
}

// ValidateKind validates every field of kind k. raw is keyed by registry key
// (e.g. "presion_sistolica"). The returned map is keyed by persisted field
// name and is only non-nil when every field passed.
func ValidateKind(k models.Kind, raw map[string]string) (map[string]float64, Errors) {
	fields := models.KindFields(k)
	if len(fields) == 0 {
		return nil, Errors{{
			Code:    UnknownMetric,
			Key:     string(k),
			Message: fmt.Sprintf("Campo desconocido: %s", k),
		}}
	}

	values := make(map[string]float64, len(fields))
	var errs Errors
	for _, def := range fields {
		v, err := Validate(def.Key, raw[def.Key])
		if err != nil {
			errs = append(errs, err.(*Error))
			continue
		}
		values[def.Field] = v
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

// ValidateMeasurement checks an already-parsed record, as read from an
// export, against the same rules as raw input: known kind, non-nil ID, a
// timestamp, every field present and finite, integer kinds whole, values in
// range, and no fields the kind does not define.
func ValidateMeasurement(m *models.Measurement) Errors {
	fields := models.KindFields(m.Kind)
	if len(fields) == 0 {
		return Errors{{
			Code:    UnknownMetric,
			Key:     string(m.Kind),
			Message: fmt.Sprintf("Campo desconocido: %s", m.Kind),
		}}
	}

	var errs Errors
	if m.ID == uuid.Nil {
		errs = append(errs, &Error{Code: RecordError, Key: "id", Message: "Registro sin identificador"})
	}
	if m.Timestamp.IsZero() {
		errs = append(errs, &Error{Code: RecordError, Key: "timestamp", Message: fmt.Sprintf("Registro %s sin fecha", m.ID)})
	}

	known := make(map[string]bool, len(fields))
	for _, def := range fields {
		known[def.Field] = true
		v, ok := m.Values[def.Field]
		switch {
		case !ok:
			errs = append(errs, &Error{Code: ParseError, Key: def.Key, Message: fmt.Sprintf("Falta %s", def.Label)})
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, &Error{Code: ParseError, Key: def.Key, Message: fmt.Sprintf("%s no es un valor numérico válido", def.Label)})
		case def.Type == models.Integer && v != math.Trunc(v):
			errs = append(errs, &Error{Code: ParseError, Key: def.Key, Message: fmt.Sprintf("%s debe ser un número entero", def.Label)})
		default:
			if err := checkRange(def, v); err != nil {
				errs = append(errs, err)
			}
		}
	}

	var extra []string
	for f := range m.Values {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	for _, f := range extra {
		errs = append(errs, &Error{Code: UnknownMetric, Key: f, Message: fmt.Sprintf("Campo desconocido: %s", f)})
	}
	return errs
}

// RawFor builds the raw input map for kind k from positional arguments, in
// KindFields order.
func RawFor(k models.Kind, args ...string) (map[string]string, error) {
	fields := models.KindFields(k)
	if len(args) != len(fields) {
		return nil, fmt.Errorf("%s requires %d value(s), got %d", k, len(fields), len(args))
	}
	raw := make(map[string]string, len(fields))
	for i, def := range fields {
		raw[def.Key] = args[i]
	}
	return raw, nil
}
