// Package alias models provider alias entries: named address sets with
// set-wise diff semantics, where single-member changes converge through
// member endpoints and larger changes replace the whole set.
package alias

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mailsync/core/reconcile"
)

// ErrDuplicateLoad reports an attempt to load addresses into an alias
// that already has them. Aliases are write-once.
var ErrDuplicateLoad = errors.New("attempt to load data into already initialized alias")

// Alias is a single alias: a name mapped to a set of target addresses.
type Alias struct {
	name      string
	addresses []string
	loaded    bool
}

// New creates an empty alias.
func New(name string) *Alias {
	return &Alias{name: name}
}

// Key returns the case-folded alias identity.
func (a *Alias) Key() string {
	return strings.ToLower(a.name)
}

// Name returns the alias local-part as declared.
func (a *Alias) Name() string {
	return a.name
}

// Addresses returns the member addresses, sorted and deduplicated.
func (a *Alias) Addresses() []string {
	return a.addresses
}

// Load sets the alias membership. Duplicates are collapsed and the set
// is kept sorted so payloads are deterministic. Loading twice fails.
func (a *Alias) Load(addresses []string) error {
	if a.loaded {
		return ErrDuplicateLoad
	}

	seen := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		a.addresses = append(a.addresses, addr)
	}
	sort.Strings(a.addresses)

	a.loaded = true
	return nil
}

// FromProvider builds an alias from a provider response document. Single
// member aliases carry the address inline; multi-member aliases carry a
// nested address list.
func FromProvider(name string, doc map[string]any) (*Alias, error) {
	a := New(name)

	if single, ok := doc["singleMemberName"].(string); ok && single != "" {
		if err := a.Load([]string{single}); err != nil {
			return nil, err
		}
		return a, nil
	}

	list, ok := doc["emailAddressList"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("alias %s: response has neither singleMemberName nor emailAddressList", name)
	}
	raw, _ := list["emailAddress"].([]any)

	addresses := make([]string, 0, len(raw))
	for _, item := range raw {
		addr, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("alias %s: non-string member %v", name, item)
		}
		addresses = append(addresses, addr)
	}

	if err := a.Load(addresses); err != nil {
		return nil, err
	}
	return a, nil
}

// Diff compares this (desired) alias to the observed one. Membership is
// a set, so the diff is directional: addresses to add and addresses to
// remove, independent of ordering on either side.
func (a *Alias) Diff(observed reconcile.Resource) (reconcile.Change, error) {
	other, ok := observed.(*Alias)
	if !ok {
		return nil, fmt.Errorf("cannot diff alias against %T", observed)
	}

	want := memberSet(a.addresses)
	have := memberSet(other.addresses)

	diff := &SetDiff{}
	for _, addr := range a.addresses {
		if _, ok := have[strings.ToLower(addr)]; !ok {
			diff.Add = append(diff.Add, addr)
		}
	}
	for _, addr := range other.addresses {
		if _, ok := want[strings.ToLower(addr)]; !ok {
			diff.Del = append(diff.Del, addr)
		}
	}

	return diff, nil
}

// CreatePayload serializes the full membership for alias creation.
func (a *Alias) CreatePayload() (map[string]any, error) {
	if len(a.addresses) == 0 {
		return nil, fmt.Errorf("alias %s has no member addresses", a.name)
	}
	return map[string]any{"aliasEmails": strings.Join(a.addresses, ",")}, nil
}

// Deletable marks aliases as removable from the provider.
func (a *Alias) Deletable() {}

// SetDiff is the membership difference between desired and observed:
// addresses missing remotely and addresses present remotely but not
// desired.
type SetDiff struct {
	Add []string `json:"add,omitempty"`
	Del []string `json:"del,omitempty"`
}

// Empty reports whether the memberships already match.
func (d *SetDiff) Empty() bool {
	return len(d.Add) == 0 && len(d.Del) == 0
}

// Changes returns the number of individual membership edits.
func (d *SetDiff) Changes() int {
	return len(d.Add) + len(d.Del)
}

func memberSet(addresses []string) map[string]struct{} {
	set := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		set[strings.ToLower(addr)] = struct{}{}
	}
	return set
}
