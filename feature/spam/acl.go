package spam

import (
	"fmt"
	"sort"
	"strings"

	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
)

// ACL kinds the provider supports.
var ValidACL = []string{"blocklist", "ipblocklist", "safelist", "ipsafelist"}

// ACL is one spam address list at one scope.
type ACL struct {
	scope   rackspace.Scope
	kind    string
	entries []string
}

// NewACL creates an empty ACL of the given kind.
func NewACL(scope rackspace.Scope, kind string) (*ACL, error) {
	ok := false
	for _, valid := range ValidACL {
		if kind == valid {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("acl %q must be one of %v", kind, ValidACL)
	}
	return &ACL{scope: scope, kind: kind}, nil
}

// Kind returns the ACL kind.
func (a *ACL) Kind() string {
	return a.kind
}

// Scope returns the scope the ACL addresses.
func (a *ACL) Scope() rackspace.Scope {
	return a.scope
}

// Key identifies the ACL within its entity kind: the ACL kind plus the
// settings-style scope key.
func (a *ACL) Key() string {
	scope := "@"
	if !a.scope.IsDomain() {
		scope = strings.ToLower(a.scope.Account)
	}
	return a.kind + ":" + scope
}

// Entries returns the list members, sorted and deduplicated.
func (a *ACL) Entries() []string {
	return a.entries
}

// Load sets the list membership, collapsing duplicates and sorting for
// deterministic payloads. Entries accumulate across calls.
func (a *ACL) Load(entries []string) {
	seen := make(map[string]struct{}, len(a.entries)+len(entries))
	for _, entry := range a.entries {
		seen[entry] = struct{}{}
	}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		a.entries = append(a.entries, entry)
	}
	sort.Strings(a.entries)
}

// FromProviderACL builds an ACL from the provider's list response, which
// nests the members under "addresses".
func FromProviderACL(scope rackspace.Scope, kind string, doc map[string]any) (*ACL, error) {
	a, err := NewACL(scope, kind)
	if err != nil {
		return nil, err
	}

	raw, _ := doc["addresses"].([]any)
	entries := make([]string, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("acl %s: non-string entry %v", kind, item)
		}
		entries = append(entries, entry)
	}

	a.Load(entries)
	return a, nil
}

// Diff compares this (desired) ACL to the observed one. Membership is a
// set, so the change carries entries to add and entries to remove.
func (a *ACL) Diff(observed reconcile.Resource) (reconcile.Change, error) {
	other, ok := observed.(*ACL)
	if !ok {
		return nil, fmt.Errorf("cannot diff acl against %T", observed)
	}
	if a.kind != other.kind {
		return nil, fmt.Errorf("cannot diff acl %s against %s", a.kind, other.kind)
	}

	want := entrySet(a.entries)
	have := entrySet(other.entries)

	diff := &ACLDelta{}
	for _, entry := range a.entries {
		if _, ok := have[entry]; !ok {
			diff.AddList = append(diff.AddList, entry)
		}
	}
	for _, entry := range other.entries {
		if _, ok := want[entry]; !ok {
			diff.RemoveList = append(diff.RemoveList, entry)
		}
	}
	return diff, nil
}

// ACLDelta is the membership difference of one ACL.
type ACLDelta struct {
	AddList    []string `json:"addList,omitempty"`
	RemoveList []string `json:"removeList,omitempty"`
}

// Empty reports whether the lists already match.
func (d *ACLDelta) Empty() bool {
	return len(d.AddList) == 0 && len(d.RemoveList) == 0
}

// Payload serializes the delta in the provider's write format: comma
// joined lists with empty keys omitted.
func (d *ACLDelta) Payload() map[string]any {
	payload := make(map[string]any, 2)
	if len(d.AddList) > 0 {
		payload["addList"] = strings.Join(d.AddList, ",")
	}
	if len(d.RemoveList) > 0 {
		payload["removeList"] = strings.Join(d.RemoveList, ",")
	}
	return payload
}

func entrySet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		set[entry] = struct{}{}
	}
	return set
}
