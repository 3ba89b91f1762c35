// Package sync orchestrates a run: it materializes domain configuration
// into per-entity documents, gates each entity on its stored
// fingerprint, reconciles the changed ones against the provider, and
// prunes remote entities whose declarations vanished.
package sync

import (
	"fmt"
	"sort"
	"strings"

	"mailsync/core/config"
	"mailsync/core/rackspace"
	"mailsync/feature/alias"
	"mailsync/feature/mailbox"
	"mailsync/feature/spam"
)

// Entity kind labels, used as fingerprint namespaces and log fields.
const (
	KindAccount = "account"
	KindAlias   = "alias"
	KindSpam    = "spam"
)

// Bundle is the materialized desired state of one domain: entity models
// ready to reconcile plus the canonical documents they were built from,
// which are what gets fingerprinted.
type Bundle struct {
	Domain string

	Accounts    map[string]*mailbox.Account
	AccountDocs map[string]any

	Aliases   map[string]*alias.Alias
	AliasDocs map[string]any

	Settings     map[string]*spam.Settings
	SettingsDocs map[string]any

	// ACLs and ACLDocs are keyed by ACL kind, then entity key.
	ACLs    map[string]map[string]*spam.ACL
	ACLDocs map[string]map[string]any
}

// Materialize splits a domain document into per-entity documents and
// builds the entity models. Entity keys are lowercased full addresses:
// "local@domain" for accounts and account-scoped spam, "@domain" for
// domain-scoped spam. Configuration errors are fatal; a declared state
// that does not validate must not be partially applied.
func Materialize(domain string, doc *config.DomainDocument) (*Bundle, error) {
	b := &Bundle{
		Domain:       domain,
		Accounts:     map[string]*mailbox.Account{},
		AccountDocs:  map[string]any{},
		Aliases:      map[string]*alias.Alias{},
		AliasDocs:    map[string]any{},
		Settings:     map[string]*spam.Settings{},
		SettingsDocs: map[string]any{},
		ACLs:         map[string]map[string]*spam.ACL{},
		ACLDocs:      map[string]map[string]any{},
	}
	for _, kind := range spam.ValidACL {
		b.ACLs[kind] = map[string]*spam.ACL{}
		b.ACLDocs[kind] = map[string]any{}
	}

	// Alias membership accumulates across accounts: each account lists
	// the aliases it belongs to, and one alias can span many accounts.
	members := map[string][]string{}

	for name, entry := range doc.Accounts {
		if err := b.addAccount(domain, name, entry, members); err != nil {
			return nil, err
		}
	}

	for name, addresses := range members {
		if err := b.addAlias(domain, name, addresses); err != nil {
			return nil, err
		}
	}

	if len(doc.Spam) > 0 {
		if err := b.addSpam(rackspace.Scope{}, "@"+domain, doc.Spam); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *Bundle) addAccount(domain, name string, entry map[string]any, members map[string][]string) error {
	email := strings.ToLower(name + "@" + domain)

	// Hosted Exchange mailboxes live in their own provider tree and use
	// a reduced spam settings schema.
	exchange := false
	if raw, ok := entry["exchange"]; ok {
		flag, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("account %s: exchange flag %v is not a boolean", email, raw)
		}
		exchange = flag
	}

	if section, ok := entry["spam"].(map[string]any); ok {
		scope := rackspace.Scope{Account: name, Exchange: exchange}
		if err := b.addSpam(scope, email, section); err != nil {
			return err
		}
	}

	if raw, ok := entry["aliases"].([]any); ok {
		for _, item := range raw {
			aliasName, ok := item.(string)
			if !ok {
				return fmt.Errorf("account %s: alias entry %v is not a string", email, item)
			}
			if !strings.Contains(aliasName, "@") {
				aliasName += "@" + domain
			}
			aliasName = strings.ToLower(aliasName)
			members[aliasName] = append(members[aliasName], email)
		}
	}

	fields := make(map[string]any, len(entry))
	for key, val := range entry {
		if key == "spam" || key == "aliases" || key == "exchange" {
			continue
		}
		fields[key] = val
	}

	account := mailbox.New(name)
	if err := account.LoadRoot(fields); err != nil {
		return fmt.Errorf("account %s: %w", email, err)
	}

	b.Accounts[email] = account
	b.AccountDocs[email] = fields
	return nil
}

func (b *Bundle) addAlias(domain, name string, addresses []string) error {
	local := strings.TrimSuffix(name, "@"+domain)
	if strings.Contains(local, "@") {
		return fmt.Errorf("alias %s does not belong to domain %s", name, domain)
	}

	a := alias.New(local)
	if err := a.Load(addresses); err != nil {
		return fmt.Errorf("alias %s: %w", name, err)
	}

	b.Aliases[name] = a
	b.AliasDocs[name] = a.Addresses()
	return nil
}

func (b *Bundle) addSpam(scope rackspace.Scope, key string, section map[string]any) error {
	for _, kind := range spam.ValidACL {
		raw, ok := section[kind]
		if !ok {
			continue
		}
		entries, err := stringList(raw)
		if err != nil {
			return fmt.Errorf("spam %s for %s: %w", kind, key, err)
		}
		if len(entries) == 0 {
			continue
		}

		acl, err := spam.NewACL(scope, kind)
		if err != nil {
			return err
		}
		acl.Load(entries)

		b.ACLs[kind][key] = acl
		b.ACLDocs[kind][key] = acl.Entries()
	}

	raw, ok := section["settings"]
	if !ok {
		return nil
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("spam settings for %s: not a mapping", key)
	}

	settings := spam.NewSettings(scope)
	if err := settings.Load(data); err != nil {
		return fmt.Errorf("spam settings for %s: %w", key, err)
	}

	b.Settings[key] = settings
	b.SettingsDocs[key] = data
	return nil
}

func stringList(raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("value %v is not a list", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("entry %v is not a string", item)
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
