// Package mailbox models provider mailbox accounts: the field schema, the
// load/flatten rules for both config and provider data shapes, and the
// directional replace diff used to converge remote accounts.
package mailbox

import (
	"errors"
	"fmt"
	"strings"

	"mailsync/core/field"
	"mailsync/core/reconcile"
	"mailsync/core/utils"
)

// ErrDuplicateLoad reports an attempt to load data into an account that
// already has data loaded. Accounts are write-once.
var ErrDuplicateLoad = errors.New("attempt to load data into already initialized account")

// SchemaTypeError reports a provider value that cannot be coerced to its
// declared field type. Fatal for the entity being built; callers skip the
// entity and continue with others.
type SchemaTypeError struct {
	Field string
	Value any
	Err   error
}

func (e *SchemaTypeError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *SchemaTypeError) Unwrap() error { return e.Err }

// MissingRequiredFieldError reports a creation payload lacking fields the
// provider requires on account creation.
type MissingRequiredFieldError struct {
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("data missing required fields to add account: %s", strings.Join(e.Fields, ", "))
}

// schema declares every field the provider supports on an account and its
// type. The provider's schema evolves independently of ours; unknown keys
// in responses are reported and dropped, never an error.
var schema = map[string]field.Kind{
	"businessCity":               field.String,
	"businessCountry":            field.String,
	"businessNumber":             field.String,
	"businessPostalCode":         field.String,
	"businessState":              field.String,
	"businessStreet":             field.String,
	"createdDate":                field.String,
	"currentUsage":               field.Integer,
	"customID":                   field.String,
	"displayName":                field.String,
	"employeeType":               field.String,
	"enabled":                    field.Boolean,
	"enableForwardingAddresses":  field.String,
	"enableVacationMessage":      field.Boolean,
	"faxNumber":                  field.String,
	"firstName":                  field.String,
	"generationQualifier":        field.String,
	"homeCity":                   field.String,
	"homeCountry":                field.String,
	"homeFaxNumber":              field.String,
	"homeNumber":                 field.String,
	"homePostalAddress":          field.String,
	"homePostalCode":             field.String,
	"homeState":                  field.String,
	"homeStreet":                 field.String,
	"initials":                   field.String,
	"lastLogin":                  field.String,
	"lastName":                   field.String,
	"mobileNumber":               field.String,
	"name":                       field.String,
	"notes":                      field.String,
	"organizationalStatus":       field.String,
	"organization":               field.String,
	"organizationUnit":           field.String,
	"pagerNumber":                field.String,
	"password":                   field.String,
	"personalTitle":              field.String,
	"recoverDeleted":             field.Boolean,
	"saveForwardedEmail":         field.Boolean,
	"size":                       field.Integer,
	"title":                      field.String,
	"userID":                     field.String,
	"vacationMessage":            field.String,
	"visibleInExchangeGAL":       field.Boolean,
	"visibleInRackspaceEmailCompanyDirectory": field.Boolean,
}

// defaults are applied to every new account before loading.
var defaults = map[string]any{
	"enabled":              true,
	"size":                 25600,
	"visibleInExchangeGAL": true,
	"visibleInRackspaceEmailCompanyDirectory": true,
}

// readOnly fields are server-assigned: read from responses, never sent.
var readOnly = map[string]struct{}{
	"currentUsage": {},
	"createdDate":  {},
	"lastLogin":    {},
	"name":         {},
}

// createRequired fields must be present to create an account.
var createRequired = []string{"password", "size"}

// diffIgnore fields are excluded from the replace diff on top of the
// read-only set: password changes are not detectable from remote state,
// and the recovery flag is creation-time only.
var diffIgnore = map[string]struct{}{
	"password":       {},
	"recoverDeleted": {},
	"name":           {},
}

// loadIgnore keys are present in config account entries but handled by the
// orchestrating caller, not the entity.
var loadIgnore = map[string]struct{}{
	"aliases": {},
	"spam":    {},
}

// Account is a single mailbox account. It is constructed empty, loaded
// exactly once from either a flat config entry or a nested provider
// response, and immutable by identity afterwards.
type Account struct {
	name    string
	values  map[string]any
	loaded  bool
	unknown []string
}

// New creates an empty account with defaults applied.
func New(name string) *Account {
	values := make(map[string]any, len(defaults))
	for key, val := range defaults {
		values[key] = val
	}
	return &Account{name: name, values: values}
}

// Key returns the case-folded account identity.
func (a *Account) Key() string {
	return strings.ToLower(a.name)
}

// Name returns the account local-part as declared.
func (a *Account) Name() string {
	return a.name
}

// UnknownFields returns the keys the last load reported as unknown, for
// the caller to log.
func (a *Account) UnknownFields() []string {
	return a.unknown
}

// LoadRoot loads data into the account. The data is either a flat dict
// from configuration or a nested provider response; nested contactInfo is
// flattened into the account. Loading an already-loaded account fails.
func (a *Account) LoadRoot(data map[string]any) error {
	if a.loaded {
		return ErrDuplicateLoad
	}

	if err := a.mergeFields(data); err != nil {
		return err
	}

	// Synthesize the display name from first/last when not supplied.
	if s, _ := a.values["displayName"].(string); s == "" {
		first, _ := a.values["firstName"].(string)
		last, _ := a.values["lastName"].(string)
		if first != "" || last != "" {
			a.values["displayName"] = strings.TrimSpace(first + " " + last)
		}
	}

	a.loaded = true
	return nil
}

// mergeFields folds key/value pairs into the account, recursing through
// the provider's nested contactInfo section.
func (a *Account) mergeFields(data map[string]any) error {
	for key, val := range data {
		if _, skip := loadIgnore[key]; skip {
			continue
		}

		// Provider responses nest contact details one level deep; config
		// entries are flat. Flatten on the way in.
		if key == "contactInfo" {
			nested, ok := val.(map[string]any)
			if !ok {
				return &SchemaTypeError{Field: key, Value: val, Err: fmt.Errorf("contactInfo is not an object")}
			}
			if err := a.mergeFields(nested); err != nil {
				return err
			}
			continue
		}

		// The forwarding list comes back as an array under a different
		// name than the flat field the provider accepts on write.
		if key == "emailForwardingAddressList" {
			joined, err := joinStrings(val)
			if err != nil {
				return &SchemaTypeError{Field: key, Value: val, Err: err}
			}
			key = "enableForwardingAddresses"
			val = joined
		}

		kind, known := schema[key]
		if !known {
			a.unknown = append(a.unknown, key)
			continue
		}

		coerced, err := coerceValue(kind, val)
		if err != nil {
			return &SchemaTypeError{Field: key, Value: val, Err: err}
		}

		a.values[key] = coerced
	}

	return nil
}

// Value returns the effective value of a field: the loaded value if any,
// else the type's zero value.
func (a *Account) Value(name string) any {
	if val, ok := a.values[name]; ok {
		return val
	}
	return zeroValue(schema[name])
}

// Diff compares this (desired) account to the observed one and returns
// the fields to overwrite remotely. Scalar account fields each have
// exactly one correct desired value, so the diff only carries values to
// set, never values to remove.
func (a *Account) Diff(observed reconcile.Resource) (reconcile.Change, error) {
	other, ok := observed.(*Account)
	if !ok {
		return nil, fmt.Errorf("cannot diff account against %T", observed)
	}

	diff := FieldChange{}
	for name := range schema {
		if _, skip := readOnly[name]; skip {
			continue
		}
		if _, skip := diffIgnore[name]; skip {
			continue
		}

		want := a.Value(name)
		have := other.Value(name)
		if want != have {
			diff[name] = want
		}
	}

	return diff, nil
}

// CreatePayload serializes the full desired state as the creation
// payload, validating that the provider's required-on-create fields are
// present.
func (a *Account) CreatePayload() (map[string]any, error) {
	payload := make(map[string]any, len(schema))
	for name := range schema {
		if _, skip := readOnly[name]; skip {
			continue
		}
		payload[name] = a.Value(name)
	}

	var missing []string
	for _, req := range createRequired {
		if _, ok := a.values[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldError{Fields: missing}
	}

	return payload, nil
}

// MarkRecoverable flags the account for recovery-style creation: the
// provider reported the identity as recently deleted and resurrectable.
func (a *Account) MarkRecoverable() {
	a.values["recoverDeleted"] = true
}

// Deletable marks accounts as removable from the provider.
func (a *Account) Deletable() {}

// FieldChange is the replace diff of an account: field names mapped to
// the desired values that should overwrite remote state.
type FieldChange map[string]any

// Empty reports whether no field differs.
func (c FieldChange) Empty() bool {
	return len(c) == 0
}

// coerceValue normalizes a raw config or provider value to the declared
// field kind.
func coerceValue(kind field.Kind, val any) (any, error) {
	switch kind {
	case field.String:
		return utils.CoerceString(val)
	case field.Integer:
		return utils.CoerceInt(val)
	case field.Boolean:
		return utils.CoerceBool(val)
	default:
		return nil, fmt.Errorf("unknown field kind %v", kind)
	}
}

func zeroValue(kind field.Kind) any {
	switch kind {
	case field.Integer:
		return 0
	case field.Boolean:
		return false
	default:
		return ""
	}
}

func joinStrings(val any) (string, error) {
	switch items := val.(type) {
	case []string:
		return strings.Join(items, ","), nil
	case []any:
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("list entry %v (%T) is not a string", item, item)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("value %v (%T) is not a list", val, val)
	}
}
