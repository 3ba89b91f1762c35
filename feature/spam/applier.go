package spam

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
)

// FetchSettings retrieves the spam settings at the given scope.
func FetchSettings(ctx context.Context, api *rackspace.Client, domain string, scope rackspace.Scope) (*Settings, error) {
	result, err := api.Get(ctx, api.Paths(domain).SpamSettings(scope), nil)
	if err != nil {
		return nil, err
	}
	if result.NotFound() {
		return nil, nil
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetching spam settings %s: status %d", scopeLabel(domain, scope), result.StatusCode)
	}

	settings := NewSettings(scope)
	if err := settings.Load(result.Body); err != nil {
		return nil, err
	}
	return settings, nil
}

// FetchACL retrieves one spam ACL at the given scope.
func FetchACL(ctx context.Context, api *rackspace.Client, domain string, scope rackspace.Scope, kind string) (*ACL, error) {
	result, err := api.Get(ctx, api.Paths(domain).SpamACL(scope, kind), nil)
	if err != nil {
		return nil, err
	}
	if result.NotFound() {
		return nil, nil
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetching spam %s %s: status %d", kind, scopeLabel(domain, scope), result.StatusCode)
	}
	return FromProviderACL(scope, kind, result.Body)
}

// SettingsApplier executes planned spam settings actions. Settings
// always exist remotely, so only updates are valid; an update writes the
// full desired document.
type SettingsApplier struct {
	api    *rackspace.Client
	domain string
	log    *zap.Logger
}

func NewSettingsApplier(api *rackspace.Client, domain string, log *zap.Logger) *SettingsApplier {
	return &SettingsApplier{api: api, domain: domain, log: log}
}

func (ap *SettingsApplier) Create(ctx context.Context, act reconcile.Action) error {
	return fmt.Errorf("spam settings %s cannot be created", act.Key)
}

func (ap *SettingsApplier) Delete(ctx context.Context, act reconcile.Action) error {
	return fmt.Errorf("spam settings %s cannot be deleted", act.Key)
}

func (ap *SettingsApplier) Update(ctx context.Context, act reconcile.Action) error {
	settings, ok := act.Desired.(*Settings)
	if !ok {
		return fmt.Errorf("update %s: unexpected resource %T", act.Key, act.Desired)
	}

	payload := settings.Payload()
	path := ap.api.Paths(ap.domain).SpamSettings(settings.Scope())
	ap.log.Info("writing spam settings", zap.String("path", path), zap.Any("fields", payload))

	result, err := ap.api.Put(ctx, path, rackspace.FormValues(payload))
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("writing spam settings %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

// ACLApplier executes planned spam ACL actions. Lists always exist
// remotely; an update with no computed delta pushes the full desired
// membership as additions.
type ACLApplier struct {
	api    *rackspace.Client
	domain string
	log    *zap.Logger
}

func NewACLApplier(api *rackspace.Client, domain string, log *zap.Logger) *ACLApplier {
	return &ACLApplier{api: api, domain: domain, log: log}
}

func (ap *ACLApplier) Create(ctx context.Context, act reconcile.Action) error {
	return fmt.Errorf("spam acl %s cannot be created", act.Key)
}

func (ap *ACLApplier) Delete(ctx context.Context, act reconcile.Action) error {
	return fmt.Errorf("spam acl %s cannot be deleted", act.Key)
}

func (ap *ACLApplier) Update(ctx context.Context, act reconcile.Action) error {
	acl, ok := act.Desired.(*ACL)
	if !ok {
		return fmt.Errorf("update %s: unexpected resource %T", act.Key, act.Desired)
	}

	var payload map[string]any
	switch delta := act.Change.(type) {
	case *ACLDelta:
		payload = delta.Payload()
	case nil:
		payload = map[string]any{"addList": strings.Join(acl.Entries(), ",")}
	default:
		return fmt.Errorf("update %s: unexpected change %T", act.Key, act.Change)
	}
	if len(payload) == 0 {
		return nil
	}

	path := ap.api.Paths(ap.domain).SpamACL(acl.Scope(), acl.Kind())
	ap.log.Info("updating spam acl", zap.String("path", path), zap.Any("changes", payload))

	result, err := ap.api.Put(ctx, path, rackspace.FormValues(payload))
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("updating spam acl %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

func scopeLabel(domain string, scope rackspace.Scope) string {
	if scope.IsDomain() {
		return "for " + domain
	}
	return fmt.Sprintf("for %s@%s", scope.Account, domain)
}
