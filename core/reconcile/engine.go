package reconcile

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Applier executes planned actions against the remote provider for one
// entity kind. Implementations live with their entity models and know the
// API paths and payload conventions for their kind.
type Applier interface {
	// Create adds the entity to the provider from act.Payload.
	Create(ctx context.Context, act Action) error

	// Update converges the remote entity using act.Change. A nil Change
	// means write the full desired state.
	Update(ctx context.Context, act Action) error

	// Delete removes the entity from the provider.
	Delete(ctx context.Context, act Action) error
}

// BuildPlan computes the action set that converges observed state to
// desired state. Keys in both maps are case-folded before comparison, so
// a config "Foo" and a remote "foo" are the same entity.
//
// Entities that cannot be planned (missing required create fields,
// mismatched diff types) are recorded as failures and do not abort the
// rest of the plan.
func BuildPlan(desired, observed map[string]Resource) *Plan {
	desired = foldKeys(desired)
	observed = foldKeys(observed)

	plan := &Plan{}
	plan.Summary.Desired = len(desired)
	plan.Summary.Observed = len(observed)

	for key, want := range desired {
		have, exists := observed[key]

		if !exists {
			planAbsent(plan, key, want)
			continue
		}

		change, err := want.Diff(have)
		if err != nil {
			plan.fail(key, fmt.Errorf("diff failed: %w", err))
			continue
		}

		if change.Empty() {
			plan.InSync = append(plan.InSync, key)
			plan.Summary.InSync++
			continue
		}

		plan.Updates = append(plan.Updates, Action{
			Kind:     ActionUpdate,
			Key:      key,
			Desired:  want,
			Observed: have,
			Change:   change,
		})
		plan.Summary.Updates++
	}

	for key, have := range observed {
		if _, exists := desired[key]; exists {
			continue
		}
		if _, ok := have.(Deletable); !ok {
			continue
		}
		plan.Deletes = append(plan.Deletes, Action{
			Kind:     ActionDelete,
			Key:      key,
			Observed: have,
		})
		plan.Summary.Deletes++
	}

	return plan
}

// planAbsent schedules the action for a desired entity with no remote
// counterpart: a create for creatable kinds, a full-state update for
// settings-style kinds that always exist remotely.
func planAbsent(plan *Plan, key string, want Resource) {
	creatable, ok := want.(Creatable)
	if !ok {
		plan.Updates = append(plan.Updates, Action{
			Kind:    ActionUpdate,
			Key:     key,
			Desired: want,
		})
		plan.Summary.Updates++
		return
	}

	payload, err := creatable.CreatePayload()
	if err != nil {
		plan.fail(key, err)
		return
	}

	plan.Creates = append(plan.Creates, Action{
		Kind:    ActionCreate,
		Key:     key,
		Desired: want,
		Payload: payload,
	})
	plan.Summary.Creates++
}

func (p *Plan) fail(key string, err error) {
	p.Failures = append(p.Failures, Failure{Key: key, Err: err})
	p.Summary.Failed++
}

// Apply executes the plan's actions sequentially through the applier.
// Every action is logged before transmission; dry-run suppresses the
// transmission, not the log line. A failing action is recorded and does
// not abort the remaining actions.
func Apply(ctx context.Context, plan *Plan, applier Applier, opts Options, log *zap.Logger) *ApplyResult {
	result := &ApplyResult{}

	for _, act := range plan.Actions() {
		log.Info("planned action",
			zap.String("action", string(act.Kind)),
			zap.String("key", act.Key),
			zap.Any("payload", actionDetail(act)))

		if opts.DryRun {
			result.Skipped = append(result.Skipped, act)
			continue
		}
		if act.Kind == ActionDelete && !opts.Confirmed {
			log.Warn("delete not confirmed, skipping", zap.String("key", act.Key))
			result.Skipped = append(result.Skipped, act)
			continue
		}

		var err error
		switch act.Kind {
		case ActionCreate:
			err = applier.Create(ctx, act)
		case ActionUpdate:
			err = applier.Update(ctx, act)
		case ActionDelete:
			err = applier.Delete(ctx, act)
		default:
			err = fmt.Errorf("unknown action kind %q", act.Kind)
		}

		if err != nil {
			log.Error("action failed",
				zap.String("action", string(act.Kind)),
				zap.String("key", act.Key),
				zap.Error(err))
			result.Failures = append(result.Failures, Failure{Key: act.Key, Err: err})
			continue
		}

		result.Applied = append(result.Applied, act)
	}

	return result
}

// actionDetail picks the loggable payload for an action.
func actionDetail(act Action) any {
	switch {
	case act.Payload != nil:
		return act.Payload
	case act.Change != nil:
		return act.Change
	default:
		return nil
	}
}

// foldKeys returns a copy of the map with all keys lowercased.
func foldKeys(in map[string]Resource) map[string]Resource {
	out := make(map[string]Resource, len(in))
	for key, val := range in {
		out[strings.ToLower(key)] = val
	}
	return out
}
