// Package field provides constrained scalar values for provider settings.
//
// A Definition declares a field's type, default value, optional set of
// allowed values, and an optional validation predicate. Definitions are
// immutable and shared; per-instance state lives in Field, which holds at
// most one current value. Setting a value validates every constraint
// before anything is stored, so a Field is never left half-updated.
package field

import (
	"fmt"
	"strconv"
)

// Kind is the declared type of a field value.
type Kind int

const (
	String Kind = iota
	Integer
	Boolean
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Validator is a predicate applied to a candidate value after type and
// enumeration checks pass.
type Validator func(v any) error

// Definition is the immutable schema of a single field.
type Definition struct {
	Kind    Kind
	Default any
	// Valid, when non-empty, restricts values to its members.
	Valid []any
	// Check, when set, must accept the value.
	Check Validator
}

// New returns a fresh Field instance bound to this definition.
func (d *Definition) New() *Field {
	return &Field{def: d}
}

// Field is a per-instance value holder for a Definition.
type Field struct {
	def   *Definition
	value any
	set   bool
}

// ErrTypeMismatch reports a value whose runtime type does not match the
// field's declared kind.
type ErrTypeMismatch struct {
	Kind  Kind
	Value any
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("value %v (%T) must be of type %s", e.Value, e.Value, e.Kind)
}

// ErrInvalidEnumeration reports a value outside the allowed set.
type ErrInvalidEnumeration struct {
	Value any
	Valid []any
}

func (e *ErrInvalidEnumeration) Error() string {
	return fmt.Sprintf("value %v must be one of %v", e.Value, e.Valid)
}

// ErrValidationFailed reports a value rejected by the field's validator.
type ErrValidationFailed struct {
	Value any
	Cause error
}

func (e *ErrValidationFailed) Error() string {
	return fmt.Sprintf("value %v failed validation: %v", e.Value, e.Cause)
}

func (e *ErrValidationFailed) Unwrap() error { return e.Cause }

// Kind returns the declared kind of the field.
func (f *Field) Kind() Kind { return f.def.Kind }

// Value returns the current value if one was set, else the default.
func (f *Field) Value() any {
	if f.set {
		return f.value
	}
	return f.def.Default
}

// Set stores a value after validating every constraint. A nil value clears
// the field back to its default. All checks run before any state changes.
func (f *Field) Set(v any) error {
	if v == nil {
		f.value = nil
		f.set = false
		return nil
	}

	v, err := coerce(f.def.Kind, v)
	if err != nil {
		return err
	}

	if len(f.def.Valid) > 0 {
		ok := false
		for _, valid := range f.def.Valid {
			if v == valid {
				ok = true
				break
			}
		}
		if !ok {
			return &ErrInvalidEnumeration{Value: v, Valid: f.def.Valid}
		}
	}

	if f.def.Check != nil {
		if err := f.def.Check(v); err != nil {
			return &ErrValidationFailed{Value: v, Cause: err}
		}
	}

	f.value = v
	f.set = true
	return nil
}

// Equal reports whether two fields agree on kind and effective value.
// Unset fields compare by their defaults.
func (f *Field) Equal(other *Field) bool {
	if other == nil {
		return false
	}
	if f.def.Kind != other.def.Kind {
		return false
	}
	return f.Value() == other.Value()
}

// coerce checks v against the declared kind. Integer fields accept numeric
// strings and the numeric types JSON decoding produces.
func coerce(kind Kind, v any) (any, error) {
	switch kind {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Integer:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			return int(n), nil
		case string:
			i, err := strconv.Atoi(n)
			if err == nil {
				return i, nil
			}
		}
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, &ErrTypeMismatch{Kind: kind, Value: v}
}

// NonNegative is a validator for integer fields that must not be negative.
func NonNegative(v any) error {
	n, ok := v.(int)
	if !ok {
		return fmt.Errorf("value %v is not an integer", v)
	}
	if n < 0 {
		return fmt.Errorf("value %d is a negative number", n)
	}
	return nil
}
