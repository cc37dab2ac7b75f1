package domain

import (
	"math"
	"strconv"
)

// ValueModel is the unit of state every widget manages: a bounded scalar
// with a range, a default, and optional wrap-around semantics.
//
// A ValueModel is owned by exactly one widget and must only be mutated from
// the UI goroutine. Rendering code never mutates it.
type ValueModel struct {
	min, max float64
	def      float64
	wrap     bool
	current  float64

	observers []func(v float64)
}

// NewValueModel builds a model with the given range and default.
// A range where min > max is a configuration defect.
func NewValueModel(min, max, def float64, wrap bool) (*ValueModel, error) {
	if min > max {
		return nil, NewConfigError("", "malformed range: min %v > max %v", min, max)
	}
	m := &ValueModel{min: min, max: max, def: def, wrap: wrap}
	m.current = m.normalize(def)
	return m, nil
}

// Min returns the lower bound.
func (m *ValueModel) Min() float64 { return m.min }

// Max returns the upper bound.
func (m *ValueModel) Max() float64 { return m.max }

// Default returns the declared default value.
func (m *ValueModel) Default() float64 { return m.def }

// Wraps reports whether the model uses modular wrap-around semantics.
func (m *ValueModel) Wraps() bool { return m.wrap }

// Current returns the applied value.
func (m *ValueModel) Current() float64 { return m.current }

// Span returns max - min.
func (m *ValueModel) Span() float64 { return m.max - m.min }

func (m *ValueModel) normalize(raw float64) float64 {
	if m.wrap {
		span := m.max - m.min
		if span == 0 {
			return m.min
		}
		v := math.Mod(raw-m.min, span)
		if v < 0 {
			v += span
		}
		return m.min + v
	}
	return math.Max(m.min, math.Min(m.max, raw))
}

// Set clamps (or wraps) raw into range, applies it, and returns the applied
// value, which may differ from raw. Out-of-range input never fails;
// clamping is the defined recovery. Observers fire only when the applied
// value differs from the previous one.
func (m *ValueModel) Set(raw float64) float64 {
	v := m.normalize(raw)
	if v != m.current {
		m.current = v
		for _, fn := range m.observers {
			fn(v)
		}
	}
	return v
}

// ResetToDefault sets the current value back to the declared default.
// Idempotent.
func (m *ValueModel) ResetToDefault() float64 { return m.Set(m.def) }

// ResetTo sets the current value to the given reference point using the
// same clamp/wrap rule as Set. Idempotent.
func (m *ValueModel) ResetTo(reference float64) float64 { return m.Set(reference) }

// OnChange registers a change observer. Both the local-gesture path and the
// remote-apply path invoke observers identically, which is what makes the
// "always redraw on change" contract explicit.
func (m *ValueModel) OnChange(fn func(v float64)) {
	m.observers = append(m.observers, fn)
}

// Coerce converts an untyped payload value into a float64 suitable for Set.
// Non-numeric or non-finite input yields an InvalidValueError; the caller
// discards the message and leaves the model unchanged.
func Coerce(raw any) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, &InvalidValueError{Raw: raw}
		}
		v = f
	default:
		return 0, &InvalidValueError{Raw: raw}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidValueError{Raw: raw}
	}
	return v, nil
}
