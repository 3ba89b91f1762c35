package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"mailsync/core/config"
	"mailsync/core/logger"
	"mailsync/core/rackspace"
	"mailsync/core/reconcile"
	"mailsync/core/state"
	syncsvc "mailsync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync command
	dryRunSync bool
	yesConfirm bool
	watchSync  bool
)

// syncCmd converges all configured domains to their declared state.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Converge configured domains to their declared state",
	Long: `Sync reads the per-domain YAML files from the configuration directory
and pushes the differences to the provider. Entities whose declaration is
unchanged since the last successful run are skipped entirely.

Examples:
  # Sync all domains (deletes need confirmation)
  mailsync sync

  # Show planned actions without touching the provider
  mailsync sync --dry-run

  # Non-interactive run, deletes auto-confirmed
  mailsync sync --yes

  # Keep running, syncing whenever the trigger file is touched
  mailsync sync --watch --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Log planned actions without transmitting them")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	syncCmd.Flags().BoolVar(&watchSync, "watch", false, "Stay running and sync on every trigger file touch")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
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

	opts := reconcile.Options{
		DryRun:    dryRunSync,
		Confirmed: false,
	}
	if !dryRunSync {
		opts.Confirmed = confirmDestructiveAction()
		if !opts.Confirmed {
			l.Warn("Deletes not confirmed: removals will be logged and skipped.")
		}
	}

	run := func(ctx context.Context) error {
		svc := syncsvc.NewService(api, store, opts, l)
		return syncDomains(ctx, svc, cfg, l)
	}

	if watchSync {
		return syncsvc.Watch(ctx, cfg.Sync.TriggerPath, l, run)
	}
	return run(ctx)
}

// syncDomains runs every configured domain, isolating per-domain failures
// so one broken domain does not block the rest.
func syncDomains(ctx context.Context, svc *syncsvc.Service, cfg *config.Config, l *zap.Logger) error {
	domains, err := config.DiscoverDomains(cfg.Sync.ConfDir)
	if err != nil {
		return fmt.Errorf("failed to discover domains: %w", err)
	}
	if len(domains) == 0 {
		l.Warn("No domain configurations found", zap.String("dir", cfg.Sync.ConfDir))
		return nil
	}

	failed := 0
	for _, domain := range domains {
		doc, err := config.LoadDomain(cfg.Sync.ConfDir, domain)
		if err != nil {
			l.Error("cannot load domain config", zap.String("domain", domain), zap.Error(err))
			failed++
			continue
		}

		if err := svc.SyncDomain(ctx, domain, doc); err != nil {
			l.Error("domain sync incomplete", zap.String("domain", domain), zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d domains failed to sync", failed, len(domains))
	}

	l.Info("All domains in sync", zap.Int("domains", len(domains)))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
