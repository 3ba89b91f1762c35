package alias

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
)

// Applier executes planned alias actions against the provider.
type Applier struct {
	api    *rackspace.Client
	domain string
	log    *zap.Logger
}

func NewApplier(api *rackspace.Client, domain string, log *zap.Logger) *Applier {
	return &Applier{api: api, domain: domain, log: log}
}

// Create adds the alias with its full membership.
func (ap *Applier) Create(ctx context.Context, act reconcile.Action) error {
	a, ok := act.Desired.(*Alias)
	if !ok {
		return fmt.Errorf("create %s: unexpected resource %T", act.Key, act.Desired)
	}

	path := ap.api.Paths(ap.domain).Alias(a.Name())
	ap.log.Info("creating alias", zap.String("path", path), zap.Strings("addresses", a.Addresses()))

	result, err := ap.api.Post(ctx, path, rackspace.FormValues(act.Payload))
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("creating alias %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

// Update converges the alias membership. A single address addition or
// removal goes through the member endpoints; anything larger replaces
// the whole membership in one call.
func (ap *Applier) Update(ctx context.Context, act reconcile.Action) error {
	a, ok := act.Desired.(*Alias)
	if !ok {
		return fmt.Errorf("update %s: unexpected resource %T", act.Key, act.Desired)
	}
	diff, ok := act.Change.(*SetDiff)
	if !ok || diff.Empty() {
		return fmt.Errorf("update %s: no membership changes", act.Key)
	}

	paths := ap.api.Paths(ap.domain)

	if diff.Changes() > 1 {
		path := paths.Alias(a.Name())
		ap.log.Info("replacing alias membership",
			zap.String("path", path), zap.Strings("addresses", a.Addresses()))

		result, err := ap.api.Put(ctx, path, rackspace.FormValues(map[string]any{
			"aliasEmails": strings.Join(a.Addresses(), ","),
		}))
		if err != nil {
			return err
		}
		if !result.OK() {
			return fmt.Errorf("replacing alias %s: status %d", act.Key, result.StatusCode)
		}
		return nil
	}

	if len(diff.Add) == 1 {
		path := paths.AliasMember(a.Name(), diff.Add[0])
		ap.log.Info("adding alias member", zap.String("path", path))

		result, err := ap.api.Post(ctx, path, nil)
		if err != nil {
			return err
		}
		if !result.OK() {
			return fmt.Errorf("adding member to alias %s: status %d", act.Key, result.StatusCode)
		}
		return nil
	}

	path := paths.AliasMember(a.Name(), diff.Del[0])
	ap.log.Info("removing alias member", zap.String("path", path))

	result, err := ap.api.Delete(ctx, path)
	if err != nil {
		return err
	}
	if !result.OK() && !result.NotFound() {
		return fmt.Errorf("removing member from alias %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}

// Delete removes the alias from the provider.
func (ap *Applier) Delete(ctx context.Context, act reconcile.Action) error {
	a, ok := act.Observed.(*Alias)
	if !ok {
		return fmt.Errorf("delete %s: unexpected resource %T", act.Key, act.Observed)
	}

	path := ap.api.Paths(ap.domain).Alias(a.Name())
	ap.log.Info("deleting alias", zap.String("path", path))

	result, err := ap.api.Delete(ctx, path)
	if err != nil {
		return err
	}
	if !result.OK() && !result.NotFound() {
		return fmt.Errorf("deleting alias %s: status %d", act.Key, result.StatusCode)
	}
	return nil
}
