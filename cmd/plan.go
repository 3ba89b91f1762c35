package cmd

import (
	"context"
	"fmt"
	"sort"

	"mailsync/core/config"
	"mailsync/core/logger"
	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
	"mailsync/core/state"
	syncsvc "mailsync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// planCmd surveys remote state and reports the differences without
// applying anything.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Report differences between declared and remote state",
	Long: `Plan lists every remote entity of each configured domain, compares it
against the declared state and reports the actions a sync would take.
Nothing is written: neither to the provider nor to the fingerprint store.

Unlike sync, plan ignores stored fingerprints, so it also surfaces drift
in entities a previous run recorded as converged.`,
	RunE: runPlan,
}

func init() {
	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := state.NewStore(cfg.State)
	if err != nil {
		return fmt.Errorf("failed to initialize state store: %w", err)
	}

	api := rackspace.NewClient(cfg.Rackspace, l)
	svc := syncsvc.NewService(api, store, reconcile.Options{DryRun: true}, l)

	domains, err := config.DiscoverDomains(cfg.Sync.ConfDir)
	if err != nil {
		return fmt.Errorf("failed to discover domains: %w", err)
	}

	for _, domain := range domains {
		doc, err := config.LoadDomain(cfg.Sync.ConfDir, domain)
		if err != nil {
			return fmt.Errorf("failed to load domain %s: %w", domain, err)
		}

		plans, err := svc.PlanDomain(ctx, domain, doc)
		if err != nil {
			return fmt.Errorf("failed to plan domain %s: %w", domain, err)
		}

		printDomainReport(l, domain, plans)
	}

	return nil
}

// printDomainReport prints a formatted per-kind report using logger.
func printDomainReport(l *zap.Logger, domain string, plans map[string]*reconcile.Plan) {
	kinds := make([]string, 0, len(plans))
	for kind := range plans {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		plan := plans[kind]
		s := plan.Summary

		l.Info("Plan report",
			zap.String("domain", domain),
			zap.String("kind", kind),
			zap.Int("desired", s.Desired),
			zap.Int("observed", s.Observed),
			zap.Int("in_sync", s.InSync),
			zap.Int("creates", s.Creates),
			zap.Int("updates", s.Updates),
			zap.Int("deletes", s.Deletes),
			zap.Int("failed", s.Failed),
		)

		for _, action := range plan.Actions() {
			l.Info("Planned action",
				zap.String("domain", domain),
				zap.String("kind", kind),
				zap.String("action", string(action.Kind)),
				zap.String("key", action.Key),
			)
		}
		for _, failure := range plan.Failures {
			l.Error("Unplannable entity",
				zap.String("domain", domain),
				zap.String("kind", kind),
				zap.String("key", failure.Key),
				zap.Error(failure.Err),
			)
		}
	}
}
