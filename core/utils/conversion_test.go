package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		expect string
		fails  bool
	}{
		{"plain string", "hello", "hello", false},
		{"nil becomes empty", nil, "", false},
		{"single space collapses", " ", "", false},
		{"longer whitespace kept", "  ", "  ", false},
		{"number rejected", 5, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceString(tt.input)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		expect int
		fails  bool
	}{
		{"int", 5, 5, false},
		{"int64", int64(5), 5, false},
		{"json float", float64(5), 5, false},
		{"numeric string", "5", 5, false},
		{"padded numeric string", " 5 ", 5, false},
		{"word", "plenty", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceInt(tt.input)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		expect bool
		fails  bool
	}{
		{"true", true, true, false},
		{"false", false, false, false},
		{"true string", "true", false, true},
		{"other string", "yes", false, true},
		{"number", 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceBool(tt.input)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}
