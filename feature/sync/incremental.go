package sync

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mailsync/core/reconcile"
	"mailsync/core/state"
)

// syncKind converges one entity kind and returns the number of entities
// that failed. Entities whose stored fingerprint matches their current
// document are skipped without any remote call; the first run for an
// entity has no fingerprint and always syncs.
func (s *Service) syncKind(ctx context.Context, ks *kindSet) int {
	log := s.log.With(zap.String("kind", ks.kind), zap.String("domain", ks.domain))

	failed := 0
	sums := make(map[string]string, len(ks.desired))
	changed := make(map[string]reconcile.Resource, len(ks.desired))

	for key, res := range ks.desired {
		sum, err := state.Fingerprint(ks.docs[key])
		if err != nil {
			log.Error("cannot fingerprint entity", zap.String("key", key), zap.Error(err))
			failed++
			continue
		}

		stored, ok, err := s.store.Load(ctx, ks.kind, key)
		if err != nil {
			log.Error("cannot read stored fingerprint", zap.String("key", key), zap.Error(err))
			failed++
			continue
		}
		if ok && stored == sum {
			log.Debug("unchanged since last sync", zap.String("key", key))
			continue
		}

		sums[key] = sum
		changed[key] = res
	}

	// Observed state is fetched per entity, only for the ones that
	// passed the fingerprint gate. A failed read skips that entity and
	// leaves its fingerprint untouched, so the next run retries it.
	observed := make(map[string]reconcile.Resource, len(changed))
	for key := range changed {
		res, err := ks.fetch(ctx, key)
		if err != nil {
			log.Error("cannot read remote state, skipping entity",
				zap.String("key", key), zap.Error(err))
			delete(changed, key)
			failed++
			continue
		}
		if res != nil {
			observed[key] = res
		}
	}

	plan := reconcile.BuildPlan(changed, observed)
	for _, f := range plan.Failures {
		log.Error("cannot plan entity", zap.String("key", f.Key), zap.Error(f.Err))
	}
	failed += len(plan.Failures)

	result := reconcile.Apply(ctx, plan, ks.applier, s.opts, log)
	failed += len(result.Failures)

	// Fingerprints record successfully converged state only: in-sync
	// entities and applied actions, never failures, skips or dry runs.
	if !s.opts.DryRun {
		for _, key := range plan.InSync {
			s.saveFingerprint(ctx, ks.kind, key, sums[key], log)
		}
		for _, act := range result.Applied {
			if act.Kind == reconcile.ActionDelete {
				continue
			}
			s.saveFingerprint(ctx, ks.kind, act.Key, sums[act.Key], log)
		}
	}

	if ks.prune {
		failed += s.pruneKind(ctx, ks, log)
	}

	return failed
}

// pruneKind removes remote entities that previous runs synced but whose
// declarations have since vanished. The stored fingerprints are the
// record of what this tool created, so only those entities are eligible
// for removal.
func (s *Service) pruneKind(ctx context.Context, ks *kindSet, log *zap.Logger) int {
	stored, err := s.store.List(ctx, ks.kind)
	if err != nil {
		log.Error("cannot list stored fingerprints", zap.Error(err))
		return 1
	}

	failed := 0
	for key := range stored {
		if !strings.HasSuffix(key, "@"+ks.domain) {
			continue
		}
		if _, declared := ks.desired[key]; declared {
			continue
		}

		res, err := ks.fetch(ctx, key)
		if err != nil {
			log.Error("cannot read remote state for removal",
				zap.String("key", key), zap.Error(err))
			failed++
			continue
		}
		if res == nil {
			// Already gone remotely; drop the stale fingerprint.
			if !s.opts.DryRun {
				if err := s.store.Delete(ctx, ks.kind, key); err != nil {
					log.Error("cannot delete fingerprint", zap.String("key", key), zap.Error(err))
					failed++
				}
			}
			continue
		}

		plan := reconcile.BuildPlan(nil, map[string]reconcile.Resource{key: res})
		result := reconcile.Apply(ctx, plan, ks.applier, s.opts, log)
		failed += len(result.Failures)

		for _, act := range result.Applied {
			if act.Kind != reconcile.ActionDelete {
				continue
			}
			if err := s.store.Delete(ctx, ks.kind, act.Key); err != nil {
				log.Error("cannot delete fingerprint", zap.String("key", act.Key), zap.Error(err))
				failed++
			}
		}
	}

	return failed
}

func (s *Service) saveFingerprint(ctx context.Context, kind, key, sum string, log *zap.Logger) {
	if err := s.store.Save(ctx, kind, key, sum); err != nil {
		log.Error("cannot save fingerprint", zap.String("key", key), zap.Error(err))
	}
}
