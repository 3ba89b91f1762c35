package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailsync/core/config"
	"mailsync/core/logger"
	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
	"mailsync/core/state"
	"mailsync/feature/alias"
	"mailsync/feature/mailbox"
	"mailsync/feature/spam"
)

// Service drives sync runs for configured domains. Each Service carries
// a run identifier that tags every log line of the run.
type Service struct {
	api   *rackspace.Client
	store state.Store
	opts  reconcile.Options
	log   *zap.Logger
	runID string
}

func NewService(api *rackspace.Client, store state.Store, opts reconcile.Options, log *zap.Logger) *Service {
	runID := uuid.NewString()
	return &Service{
		api:   api,
		store: store,
		opts:  opts,
		log:   logger.WithRun(log, runID),
		runID: runID,
	}
}

// RunID returns the identifier tagging this run's log lines.
func (s *Service) RunID() string {
	return s.runID
}

// SyncDomain converges one domain to its declared state. Individual
// entity failures are logged and counted but do not abort the rest of
// the domain; a non-nil error means at least one entity failed.
func (s *Service) SyncDomain(ctx context.Context, domain string, doc *config.DomainDocument) error {
	log := s.log.With(zap.String("domain", domain))
	log.Info("syncing domain", zap.Bool("dry_run", s.opts.DryRun))

	bundle, err := Materialize(domain, doc)
	if err != nil {
		return fmt.Errorf("materializing %s: %w", domain, err)
	}

	failed := 0
	for _, ks := range s.kindSets(bundle) {
		failed += s.syncKind(ctx, ks)
	}

	if failed > 0 {
		return fmt.Errorf("%d entities failed to sync for %s", failed, domain)
	}

	log.Info("domain in sync")
	return nil
}

// kindSet binds one entity kind's desired state to the provider access
// it needs: a point fetch for observed state and an applier for planned
// actions. The kind label doubles as the fingerprint namespace.
type kindSet struct {
	kind    string
	domain  string
	desired map[string]reconcile.Resource
	docs    map[string]any
	fetch   func(ctx context.Context, key string) (reconcile.Resource, error)
	applier reconcile.Applier

	// prune enables removal of remote entities whose declarations
	// vanished. Only creatable kinds prune; settings and ACLs always
	// exist remotely and simply converge to their declared content.
	prune bool
}

// kindSets enumerates the entity kinds of a bundle in apply order:
// accounts first so aliases and account-scoped spam have their targets.
func (s *Service) kindSets(b *Bundle) []*kindSet {
	sets := []*kindSet{
		{
			kind:    KindAccount,
			domain:  b.Domain,
			desired: asResources(b.Accounts),
			docs:    b.AccountDocs,
			applier: mailbox.NewApplier(s.api, b.Domain, s.log),
			prune:   true,
			fetch: func(ctx context.Context, key string) (reconcile.Resource, error) {
				account, err := mailbox.Fetch(ctx, s.api, b.Domain, localPart(key, b.Domain))
				if err != nil || account == nil {
					return nil, err
				}
				return account, nil
			},
		},
		{
			kind:    KindAlias,
			domain:  b.Domain,
			desired: asResources(b.Aliases),
			docs:    b.AliasDocs,
			applier: alias.NewApplier(s.api, b.Domain, s.log),
			prune:   true,
			fetch: func(ctx context.Context, key string) (reconcile.Resource, error) {
				a, err := alias.Fetch(ctx, s.api, b.Domain, localPart(key, b.Domain))
				if err != nil || a == nil {
					return nil, err
				}
				return a, nil
			},
		},
		{
			kind:    KindSpam,
			domain:  b.Domain,
			desired: asResources(b.Settings),
			docs:    b.SettingsDocs,
			applier: spam.NewSettingsApplier(s.api, b.Domain, s.log),
			fetch: func(ctx context.Context, key string) (reconcile.Resource, error) {
				scope := scopeOf(key, b.Domain)
				if desired, ok := b.Settings[key]; ok {
					scope = desired.Scope()
				}
				settings, err := spam.FetchSettings(ctx, s.api, b.Domain, scope)
				if err != nil || settings == nil {
					return nil, err
				}
				return settings, nil
			},
		},
	}

	for _, kind := range spam.ValidACL {
		kind := kind
		sets = append(sets, &kindSet{
			kind:    kind,
			domain:  b.Domain,
			desired: asResources(b.ACLs[kind]),
			docs:    b.ACLDocs[kind],
			applier: spam.NewACLApplier(s.api, b.Domain, s.log),
			fetch: func(ctx context.Context, key string) (reconcile.Resource, error) {
				scope := scopeOf(key, b.Domain)
				if desired, ok := b.ACLs[kind][key]; ok {
					scope = desired.Scope()
				}
				acl, err := spam.FetchACL(ctx, s.api, b.Domain, scope, kind)
				if err != nil || acl == nil {
					return nil, err
				}
				return acl, nil
			},
		})
	}

	return sets
}

// asResources widens a typed entity map to the engine's resource map.
func asResources[T reconcile.Resource](in map[string]T) map[string]reconcile.Resource {
	out := make(map[string]reconcile.Resource, len(in))
	for key, val := range in {
		out[key] = val
	}
	return out
}

// localPart strips the domain suffix from an entity key.
func localPart(key, domain string) string {
	return strings.TrimSuffix(key, "@"+domain)
}

// scopeOf derives the spam scope from an entity key: "@domain" keys
// address the domain itself. Declared entities carry their own scope,
// including the Exchange flag; this is the fallback for keys with no
// declaration left.
func scopeOf(key, domain string) rackspace.Scope {
	return rackspace.Scope{Account: localPart(key, domain)}
}
