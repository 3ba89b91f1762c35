package sync

import (
	"context"
	"fmt"

	"mailsync/core/config"
	"mailsync/core/reconcile"
	"mailsync/feature/alias"
	"mailsync/feature/mailbox"
	"mailsync/feature/spam"
)

// PlanDomain surveys the full remote state of a domain and builds plans
// for every entity kind without applying anything and without consulting
// fingerprints. This is the report path: slower than an incremental sync
// but complete, including drift in entities a previous run recorded as
// converged.
func (s *Service) PlanDomain(ctx context.Context, domain string, doc *config.DomainDocument) (map[string]*reconcile.Plan, error) {
	bundle, err := Materialize(domain, doc)
	if err != nil {
		return nil, fmt.Errorf("materializing %s: %w", domain, err)
	}

	plans := make(map[string]*reconcile.Plan)

	remote, err := mailbox.List(ctx, s.api, domain, s.log)
	if err != nil {
		return nil, err
	}
	observed := make(map[string]reconcile.Resource, len(remote))
	for _, account := range remote {
		observed[account.Key()+"@"+domain] = account
	}
	plans[KindAccount] = reconcile.BuildPlan(asResources(bundle.Accounts), observed)

	remoteAliases, err := alias.List(ctx, s.api, domain, s.log)
	if err != nil {
		return nil, err
	}
	observed = make(map[string]reconcile.Resource, len(remoteAliases))
	for _, a := range remoteAliases {
		observed[a.Key()+"@"+domain] = a
	}
	plans[KindAlias] = reconcile.BuildPlan(asResources(bundle.Aliases), observed)

	observed = make(map[string]reconcile.Resource, len(bundle.Settings))
	for key, desired := range bundle.Settings {
		settings, err := spam.FetchSettings(ctx, s.api, domain, desired.Scope())
		if err != nil {
			return nil, err
		}
		if settings != nil {
			observed[key] = settings
		}
	}
	plans[KindSpam] = reconcile.BuildPlan(asResources(bundle.Settings), observed)

	for _, kind := range spam.ValidACL {
		observed = make(map[string]reconcile.Resource, len(bundle.ACLs[kind]))
		for key, desired := range bundle.ACLs[kind] {
			acl, err := spam.FetchACL(ctx, s.api, domain, desired.Scope(), kind)
			if err != nil {
				return nil, err
			}
			if acl != nil {
				observed[key] = acl
			}
		}
		plans[kind] = reconcile.BuildPlan(asResources(bundle.ACLs[kind]), observed)
	}

	return plans, nil
}
