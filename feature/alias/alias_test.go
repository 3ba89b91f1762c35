package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDeduplicatesAndSorts(t *testing.T) {
	a := New("sales")
	require.NoError(t, a.Load([]string{"b@x.org", "a@x.org", "B@x.org", "", " a@x.org "}))

	assert.Equal(t, []string{"a@x.org", "b@x.org"}, a.Addresses())
}

func TestLoadRejectsSecondLoad(t *testing.T) {
	a := New("sales")
	require.NoError(t, a.Load([]string{"a@x.org"}))

	assert.ErrorIs(t, a.Load([]string{"b@x.org"}), ErrDuplicateLoad)
	assert.Equal(t, []string{"a@x.org"}, a.Addresses())
}

func TestFromProvider(t *testing.T) {
	tests := []struct {
		name   string
		doc    map[string]any
		expect []string
		fails  bool
	}{
		{
			name:   "single member inline",
			doc:    map[string]any{"singleMemberName": "a@x.org"},
			expect: []string{"a@x.org"},
		},
		{
			name: "multi member list",
			doc: map[string]any{
				"emailAddressList": map[string]any{
					"emailAddress": []any{"b@x.org", "a@x.org"},
				},
			},
			expect: []string{"a@x.org", "b@x.org"},
		},
		{
			name:  "neither shape",
			doc:   map[string]any{"name": "sales"},
			fails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromProvider("sales", tt.doc)
			if tt.fails {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, a.Addresses())
		})
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		desired   []string
		observed  []string
		expectAdd []string
		expectDel []string
	}{
		{
			name:     "equal sets regardless of order",
			desired:  []string{"a@x.org", "b@x.org"},
			observed: []string{"b@x.org", "a@x.org"},
		},
		{
			name:     "case differences are not changes",
			desired:  []string{"A@x.org"},
			observed: []string{"a@x.org"},
		},
		{
			name:      "one addition",
			desired:   []string{"a@x.org", "b@x.org"},
			observed:  []string{"a@x.org"},
			expectAdd: []string{"b@x.org"},
		},
		{
			name:      "one removal",
			desired:   []string{"a@x.org"},
			observed:  []string{"a@x.org", "b@x.org"},
			expectDel: []string{"b@x.org"},
		},
		{
			name:      "mixed changes",
			desired:   []string{"a@x.org", "c@x.org"},
			observed:  []string{"a@x.org", "b@x.org"},
			expectAdd: []string{"c@x.org"},
			expectDel: []string{"b@x.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desired := New("sales")
			require.NoError(t, desired.Load(tt.desired))
			observed := New("sales")
			require.NoError(t, observed.Load(tt.observed))

			change, err := desired.Diff(observed)
			require.NoError(t, err)

			diff, ok := change.(*SetDiff)
			require.True(t, ok)

			assert.Equal(t, tt.expectAdd, diff.Add)
			assert.Equal(t, tt.expectDel, diff.Del)
			assert.Equal(t, len(tt.expectAdd)+len(tt.expectDel), diff.Changes())
			assert.Equal(t, diff.Changes() == 0, diff.Empty())
		})
	}
}

func TestCreatePayload(t *testing.T) {
	a := New("sales")
	require.NoError(t, a.Load([]string{"b@x.org", "a@x.org"}))

	payload, err := a.CreatePayload()
	require.NoError(t, err)
	assert.Equal(t, "a@x.org,b@x.org", payload["aliasEmails"])
}

func TestCreatePayloadEmptyMembership(t *testing.T) {
	a := New("sales")
	require.NoError(t, a.Load(nil))

	_, err := a.CreatePayload()
	assert.Error(t, err)
}
