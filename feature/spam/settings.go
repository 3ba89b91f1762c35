// Package spam models the provider's spam filtering controls: settings
// documents at domain and per-mailbox scope, and the four address ACLs.
//
// Settings always exist remotely, so they are never created or deleted:
// a differing document converges through one full-state write.
package spam

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mailsync/core/field"
	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
)

// ErrDuplicateLoad reports an attempt to load data into settings that
// already have data loaded.
var ErrDuplicateLoad = errors.New("attempt to load data into already initialized spam settings")

// ErrOverrideScope reports the user-override flag appearing outside
// domain scope, where the provider does not accept it.
var ErrOverrideScope = errors.New("overrideUserSettings is only valid in domain scope")

// FieldError reports a settings value that failed its field constraints.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Settings is a spam settings document at one scope.
type Settings struct {
	scope   rackspace.Scope
	fields  map[string]*field.Field
	loaded  bool
	unknown []string
}

// NewSettings creates settings for the given scope with every field at
// its default.
func NewSettings(scope rackspace.Scope) *Settings {
	schema := schemaFor(scope)
	fields := make(map[string]*field.Field, len(schema))
	for name, def := range schema {
		fields[name] = def.New()
	}
	return &Settings{scope: scope, fields: fields}
}

func schemaFor(scope rackspace.Scope) map[string]*field.Definition {
	switch {
	case scope.IsDomain():
		return domainSchema
	case scope.Exchange:
		return accountExSchema
	default:
		return accountRSSchema
	}
}

// Scope returns the scope these settings address.
func (s *Settings) Scope() rackspace.Scope {
	return s.scope
}

// Key identifies the settings within their entity kind: "@" for domain
// scope, the case-folded account name otherwise.
func (s *Settings) Key() string {
	if s.scope.IsDomain() {
		return "@"
	}
	return strings.ToLower(s.scope.Account)
}

// UnknownFields returns the keys the last load reported as unknown.
func (s *Settings) UnknownFields() []string {
	return s.unknown
}

// Load folds a settings document into the fields. Nested sections from
// provider responses ("rsEmailSettings", "exchangeSettings") and from
// configuration ("rsEmail", "exchange") flatten to dotted field names.
// Loading twice fails.
func (s *Settings) Load(data map[string]any) error {
	if s.loaded {
		return ErrDuplicateLoad
	}
	if err := s.merge("", data); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *Settings) merge(prefix string, data map[string]any) error {
	for key, val := range data {
		if nested, ok := val.(map[string]any); ok {
			if err := s.merge(prefix+sectionName(key)+".", nested); err != nil {
				return err
			}
			continue
		}

		name := prefix + key
		if name == "overrideUserSettings" && !s.scope.IsDomain() {
			return ErrOverrideScope
		}

		f, known := s.fields[name]
		if !known {
			s.unknown = append(s.unknown, name)
			continue
		}

		// The provider reports some on/off enums as raw booleans.
		if _, fix := onOffFields[name]; fix {
			if b, isBool := val.(bool); isBool {
				val = "off"
				if b {
					val = "on"
				}
			}
		}

		if err := f.Set(val); err != nil {
			return &FieldError{Field: name, Err: err}
		}
	}
	return nil
}

// sectionName maps nested section keys to field name prefixes. Provider
// responses suffix the sections with "Settings"; configuration does not.
func sectionName(key string) string {
	return strings.TrimSuffix(key, "Settings")
}

// Value returns the effective value of a field.
func (s *Settings) Value(name string) any {
	f, ok := s.fields[name]
	if !ok {
		return nil
	}
	return f.Value()
}

// Diff compares this (desired) settings document to the observed one.
// Every scalar has one correct value, so the change is the set of fields
// to overwrite.
func (s *Settings) Diff(observed reconcile.Resource) (reconcile.Change, error) {
	other, ok := observed.(*Settings)
	if !ok {
		return nil, fmt.Errorf("cannot diff spam settings against %T", observed)
	}
	if s.scope != other.scope {
		return nil, fmt.Errorf("cannot diff spam settings across scopes")
	}

	diff := Delta{}
	for _, name := range s.fieldNames() {
		if !s.fields[name].Equal(other.fields[name]) {
			diff[name] = s.fields[name].Value()
		}
	}
	return diff, nil
}

// Payload serializes the full desired state for the provider's settings
// write. Spam handling modes are mutually exclusive with some of the
// folder fields, so the inactive side is omitted; the user-override flag
// is only sent when enabled.
func (s *Settings) Payload() map[string]any {
	payload := make(map[string]any, len(s.fields))
	for name, f := range s.fields {
		payload[name] = f.Value()
	}

	switch payload["rsEmail.spamHandling"] {
	case "toFolder":
		delete(payload, "rsEmail.spamForwardingAddress")
	case "toAddress":
		delete(payload, "rsEmail.hasFolderCleaner")
		delete(payload, "rsEmail.spamFolderAgeLimit")
		delete(payload, "rsEmail.spamFolderNumLimit")
	}

	if override, ok := payload["overrideUserSettings"].(bool); ok && !override {
		delete(payload, "overrideUserSettings")
	}

	return payload
}

// Delta is the field-level difference of two settings documents.
type Delta map[string]any

// Empty reports whether no field differs.
func (d Delta) Empty() bool {
	return len(d) == 0
}

func (s *Settings) fieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
