package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// entity is a full-capability test resource: creatable and deletable.
type entity struct {
	key       string
	value     string
	createErr error
	diffErr   error
}

func (e *entity) Key() string { return e.key }

func (e *entity) Diff(observed Resource) (Change, error) {
	if e.diffErr != nil {
		return nil, e.diffErr
	}
	other, ok := observed.(*entity)
	if !ok {
		return nil, fmt.Errorf("mismatched resource %T", observed)
	}
	return boolChange(e.value != other.value), nil
}

func (e *entity) CreatePayload() (map[string]any, error) {
	if e.createErr != nil {
		return nil, e.createErr
	}
	return map[string]any{"value": e.value}, nil
}

func (e *entity) Deletable() {}

// settings is a resource without create or delete capability, like the
// spam settings kinds.
type settings struct {
	key   string
	value string
}

func (s *settings) Key() string { return s.key }

func (s *settings) Diff(observed Resource) (Change, error) {
	other := observed.(*settings)
	return boolChange(s.value != other.value), nil
}

type boolChange bool

func (c boolChange) Empty() bool { return !bool(c) }

type mockApplier struct {
	calls []string
	fail  map[string]error
}

func (m *mockApplier) record(kind ActionKind, act Action) error {
	if err := m.fail[act.Key]; err != nil {
		return err
	}
	m.calls = append(m.calls, string(kind)+":"+act.Key)
	return nil
}

func (m *mockApplier) Create(_ context.Context, act Action) error {
	return m.record(ActionCreate, act)
}

func (m *mockApplier) Update(_ context.Context, act Action) error {
	return m.record(ActionUpdate, act)
}

func (m *mockApplier) Delete(_ context.Context, act Action) error {
	return m.record(ActionDelete, act)
}

func resources(items ...Resource) map[string]Resource {
	out := make(map[string]Resource, len(items))
	for _, item := range items {
		out[item.Key()] = item
	}
	return out
}

func TestBuildPlanCreatesAbsentEntities(t *testing.T) {
	desired := resources(&entity{key: "bob", value: "v1"})

	plan := BuildPlan(desired, nil)

	require.Len(t, plan.Creates, 1)
	assert.Equal(t, "bob", plan.Creates[0].Key)
	assert.Equal(t, map[string]any{"value": "v1"}, plan.Creates[0].Payload)
	assert.Equal(t, 1, plan.Summary.Creates)
}

func TestBuildPlanFailsUncreatableEntity(t *testing.T) {
	bad := &entity{key: "bob", createErr: fmt.Errorf("missing password")}

	plan := BuildPlan(resources(bad), nil)

	assert.Empty(t, plan.Creates)
	require.Len(t, plan.Failures, 1)
	assert.Equal(t, "bob", plan.Failures[0].Key)
	assert.Equal(t, 1, plan.Summary.Failed)
}

func TestBuildPlanAbsentSettingsBecomeFullUpdate(t *testing.T) {
	// Kinds without create capability always exist remotely; converging
	// them from nothing is a full-state write, flagged by a nil change.
	desired := resources(&settings{key: "@", value: "v1"})

	plan := BuildPlan(desired, nil)

	require.Len(t, plan.Updates, 1)
	assert.Nil(t, plan.Updates[0].Change)
	assert.Empty(t, plan.Creates)
	assert.Empty(t, plan.Failures)
}

func TestBuildPlanUpdatesDrift(t *testing.T) {
	desired := resources(&entity{key: "bob", value: "v2"})
	observed := resources(&entity{key: "bob", value: "v1"})

	plan := BuildPlan(desired, observed)

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, boolChange(true), plan.Updates[0].Change)
	assert.Empty(t, plan.Creates)
	assert.Empty(t, plan.Deletes)
}

func TestBuildPlanInSync(t *testing.T) {
	desired := resources(&entity{key: "bob", value: "v1"})
	observed := resources(&entity{key: "bob", value: "v1"})

	plan := BuildPlan(desired, observed)

	assert.True(t, plan.Empty())
	assert.Equal(t, []string{"bob"}, plan.InSync)
	assert.Equal(t, 1, plan.Summary.InSync)
}

func TestBuildPlanDeletesOnlyDeletable(t *testing.T) {
	observed := map[string]Resource{
		"bob": &entity{key: "bob", value: "v1"},
		"@":   &settings{key: "@", value: "v1"},
	}

	plan := BuildPlan(nil, observed)

	require.Len(t, plan.Deletes, 1)
	assert.Equal(t, "bob", plan.Deletes[0].Key)
}

func TestBuildPlanFoldsKeyCase(t *testing.T) {
	desired := map[string]Resource{"Bob": &entity{key: "Bob", value: "v1"}}
	observed := map[string]Resource{"bob": &entity{key: "bob", value: "v1"}}

	plan := BuildPlan(desired, observed)

	assert.True(t, plan.Empty())
	assert.Equal(t, 1, plan.Summary.InSync)
}

func TestBuildPlanDiffErrorIsolation(t *testing.T) {
	desired := map[string]Resource{
		"bad": &entity{key: "bad", diffErr: fmt.Errorf("boom")},
		"ok":  &entity{key: "ok", value: "v2"},
	}
	observed := map[string]Resource{
		"bad": &entity{key: "bad", value: "v1"},
		"ok":  &entity{key: "ok", value: "v1"},
	}

	plan := BuildPlan(desired, observed)

	require.Len(t, plan.Failures, 1)
	assert.Equal(t, "bad", plan.Failures[0].Key)
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, "ok", plan.Updates[0].Key)
}

func TestApplyExecutesAllKinds(t *testing.T) {
	plan := &Plan{
		Creates: []Action{{Kind: ActionCreate, Key: "new"}},
		Updates: []Action{{Kind: ActionUpdate, Key: "changed"}},
		Deletes: []Action{{Kind: ActionDelete, Key: "gone"}},
	}
	applier := &mockApplier{}

	result := Apply(context.Background(), plan, applier, Options{Confirmed: true}, zap.NewNop())

	assert.Equal(t, []string{"create:new", "update:changed", "delete:gone"}, applier.calls)
	assert.Len(t, result.Applied, 3)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Failures)
}

func TestApplyDryRunTransmitsNothing(t *testing.T) {
	plan := &Plan{
		Creates: []Action{{Kind: ActionCreate, Key: "new"}},
		Deletes: []Action{{Kind: ActionDelete, Key: "gone"}},
	}
	applier := &mockApplier{}

	result := Apply(context.Background(), plan, applier, Options{DryRun: true, Confirmed: true}, zap.NewNop())

	assert.Empty(t, applier.calls)
	assert.Empty(t, result.Applied)
	assert.Len(t, result.Skipped, 2)
}

func TestApplyUnconfirmedSkipsDeletesOnly(t *testing.T) {
	plan := &Plan{
		Creates: []Action{{Kind: ActionCreate, Key: "new"}},
		Deletes: []Action{{Kind: ActionDelete, Key: "gone"}},
	}
	applier := &mockApplier{}

	result := Apply(context.Background(), plan, applier, Options{}, zap.NewNop())

	assert.Equal(t, []string{"create:new"}, applier.calls)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "gone", result.Skipped[0].Key)
}

func TestApplyFailureDoesNotAbort(t *testing.T) {
	plan := &Plan{
		Creates: []Action{
			{Kind: ActionCreate, Key: "bad"},
			{Kind: ActionCreate, Key: "ok"},
		},
	}
	applier := &mockApplier{fail: map[string]error{"bad": fmt.Errorf("boom")}}

	result := Apply(context.Background(), plan, applier, Options{Confirmed: true}, zap.NewNop())

	assert.Equal(t, []string{"create:ok"}, applier.calls)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad", result.Failures[0].Key)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "ok", result.Applied[0].Key)
}
