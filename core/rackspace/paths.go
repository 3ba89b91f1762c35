package rackspace

import "fmt"

// Scope identifies whose spam settings a path addresses: the domain as a
// whole (zero value) or a single account. Exchange selects the hosted
// Exchange mailbox tree instead of the Rackspace-native one.
type Scope struct {
	Account  string
	Exchange bool
}

// IsDomain reports whether the scope addresses the domain itself.
func (s Scope) IsDomain() bool { return s.Account == "" }

// segment returns the path segment inserted before spam paths for
// account-scoped settings, or the empty string in domain scope.
func (s Scope) segment() string {
	if s.IsDomain() {
		return ""
	}
	qtype := "rs"
	if s.Exchange {
		qtype = "ex"
	}
	return fmt.Sprintf("/%s/mailboxes/%s", qtype, s.Account)
}

// Paths builds provider API paths for one customer and domain.
type Paths struct {
	CustomerID string
	Domain     string
}

func (p Paths) domain() string {
	return fmt.Sprintf("/v1/customers/%s/domains/%s", p.CustomerID, p.Domain)
}

// Mailboxes returns the collection path for Rackspace-native mailboxes.
func (p Paths) Mailboxes() string {
	return p.domain() + "/rs/mailboxes"
}

// Mailbox returns the path for a single mailbox.
func (p Paths) Mailbox(name string) string {
	return p.Mailboxes() + "/" + name
}

// Aliases returns the collection path for aliases.
func (p Paths) Aliases() string {
	return p.domain() + "/rs/aliases"
}

// Alias returns the path for a single alias.
func (p Paths) Alias(name string) string {
	return p.Aliases() + "/" + name
}

// AliasMember returns the path for a single address within an alias, used
// by the targeted add/remove calls.
func (p Paths) AliasMember(name, address string) string {
	return p.Alias(name) + "/" + address
}

// SpamSettings returns the spam settings path for the given scope.
func (p Paths) SpamSettings(scope Scope) string {
	return p.domain() + scope.segment() + "/spam/settings"
}

// SpamACL returns the path for one of the spam ACLs in the given scope.
func (p Paths) SpamACL(scope Scope, kind string) string {
	return p.domain() + scope.segment() + "/spam/" + kind
}
