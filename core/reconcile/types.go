package reconcile

// Resource is one desired-or-observed mail entity keyed by identity.
// Keys are case-folded before comparison: the provider treats mailbox and
// alias names case-insensitively.
type Resource interface {
	// Key returns the lowercased identity of the entity.
	Key() string

	// Diff compares this (desired) resource against its observed
	// counterpart and returns the change needed to converge the remote
	// state. The returned change is empty when the two agree.
	Diff(observed Resource) (Change, error)
}

// Change is the entity-specific difference produced by Diff. The concrete
// shape varies by kind: a field/value replace map for accounts, an
// add/remove set delta for aliases and ACLs, a changed-field list for
// spam settings.
type Change interface {
	// Empty reports whether no remote mutation is required.
	Empty() bool
}

// Creatable is implemented by resources the provider can create as new
// objects (accounts, aliases). Resources without this capability always
// exist remotely; converging them from nothing is a full-state update.
type Creatable interface {
	// CreatePayload returns the full desired state serialized as the
	// creation payload. It fails when a required-on-create field is
	// missing.
	CreatePayload() (map[string]any, error)
}

// Deletable is implemented by resources the provider can delete. Settings
// and ACL kinds are not deletable; an empty set is their deleted form and
// falls out of the normal set diff.
type Deletable interface {
	Deletable()
}

// ActionKind is the type of remote mutation an action performs.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// Action is a planned remote mutation for a single entity.
type Action struct {
	// Kind specifies the mutation to perform.
	Kind ActionKind

	// Key is the entity identity, case-folded.
	Key string

	// Desired is the locally declared resource. Nil for deletes.
	Desired Resource

	// Observed is the remote resource. Nil for creates.
	Observed Resource

	// Payload is the creation payload. Only populated for creates.
	Payload map[string]any

	// Change carries the computed difference for updates. A nil Change on
	// an update means the entity is absent remotely but not creatable, so
	// the applier must write the full desired state.
	Change Change
}

// Failure records a per-entity error that did not abort the rest of the
// plan or apply cycle.
type Failure struct {
	Key string
	Err error
}

// Plan contains the planned actions for one entity kind.
type Plan struct {
	Creates []Action
	Updates []Action
	Deletes []Action

	// InSync lists entities whose desired and observed state already
	// agree.
	InSync []string

	// Failures are entities that could not be planned, e.g. a create
	// missing required fields or a diff against an incompatible type.
	Failures []Failure

	// Summary provides aggregate counts.
	Summary Summary
}

// Actions returns all planned actions. Creates and updates come first in
// desired-map order, deletes follow in observed-map order; callers must
// not rely on ordering beyond that.
func (p *Plan) Actions() []Action {
	actions := make([]Action, 0, len(p.Creates)+len(p.Updates)+len(p.Deletes))
	actions = append(actions, p.Creates...)
	actions = append(actions, p.Updates...)
	actions = append(actions, p.Deletes...)
	return actions
}

// Empty reports whether the plan schedules no mutations.
func (p *Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Summary provides aggregate statistics for a plan.
type Summary struct {
	// Desired is the number of locally declared entities.
	Desired int
	// Observed is the number of entities found remotely.
	Observed int
	// InSync counts entities needing no mutation.
	InSync int
	// Creates, Updates and Deletes count planned actions by kind.
	Creates int
	Updates int
	Deletes int
	// Failed counts entities that could not be planned.
	Failed int
}

// ApplyResult records the outcome of applying a plan.
type ApplyResult struct {
	// Applied are the actions that executed successfully.
	Applied []Action
	// Skipped are actions withheld by dry-run or missing confirmation.
	Skipped []Action
	// Failures are actions that errored; the rest of the plan still ran.
	Failures []Failure
}

// Options controls plan application.
type Options struct {
	// DryRun logs every action without transmitting it.
	DryRun bool

	// Confirmed indicates destructive actions were confirmed. When false,
	// deletes are logged but not executed.
	Confirmed bool
}
