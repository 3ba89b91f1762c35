package field

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDefaultsUntilSet(t *testing.T) {
	def := &Definition{Kind: String, Default: "on"}
	f := def.New()

	assert.Equal(t, "on", f.Value())

	require.NoError(t, f.Set("off"))
	assert.Equal(t, "off", f.Value())
}

func TestSetNilClearsToDefault(t *testing.T) {
	def := &Definition{Kind: Integer, Default: 7}
	f := def.New()

	require.NoError(t, f.Set(14))
	require.NoError(t, f.Set(nil))
	assert.Equal(t, 7, f.Value())
}

func TestSetTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		value any
	}{
		{"string from int", String, 5},
		{"integer from non-numeric string", Integer, "plenty"},
		{"boolean from string", Boolean, "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := (&Definition{Kind: tt.kind}).New()
			err := f.Set(tt.value)

			var typeErr *ErrTypeMismatch
			require.True(t, errors.As(err, &typeErr))
			assert.Equal(t, tt.kind, typeErr.Kind)
		})
	}
}

func TestSetIntegerCoercion(t *testing.T) {
	f := (&Definition{Kind: Integer}).New()

	require.NoError(t, f.Set(float64(14)))
	assert.Equal(t, 14, f.Value())

	require.NoError(t, f.Set("21"))
	assert.Equal(t, 21, f.Value())
}

func TestSetEnumeration(t *testing.T) {
	def := &Definition{Kind: String, Default: "on", Valid: []any{"on", "off"}}
	f := def.New()

	require.NoError(t, f.Set("off"))

	err := f.Set("sometimes")
	var enumErr *ErrInvalidEnumeration
	require.True(t, errors.As(err, &enumErr))

	// The failed set left the previous value in place.
	assert.Equal(t, "off", f.Value())
}

func TestSetValidator(t *testing.T) {
	def := &Definition{Kind: Integer, Default: 0, Check: NonNegative}
	f := def.New()

	require.NoError(t, f.Set(3))

	err := f.Set(-1)
	var valErr *ErrValidationFailed
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, 3, f.Value())
}

func TestEqual(t *testing.T) {
	def := &Definition{Kind: String, Default: "on"}

	a := def.New()
	b := def.New()
	assert.True(t, a.Equal(b))

	require.NoError(t, a.Set("off"))
	assert.False(t, a.Equal(b))

	// An explicitly set default compares equal to an unset field.
	require.NoError(t, a.Set("on"))
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(nil))
	assert.False(t, a.Equal((&Definition{Kind: Integer, Default: 0}).New()))
}

func TestDefinitionIsShared(t *testing.T) {
	def := &Definition{Kind: String, Default: "on", Valid: []any{"on", "off"}}

	a := def.New()
	b := def.New()
	require.NoError(t, a.Set("off"))

	// Instances do not leak values into each other.
	assert.Equal(t, "on", b.Value())
}
