package cmd

import (
	"context"
	"fmt"
	"strings"

	"mailsync/core/config"
	"mailsync/core/logger"
	"mailsync/core/rackspace"
	"mailsync/feature/mailbox"

	"github.com/spf13/cobra"
)

// renameCmd renames a mailbox in place, keeping its contents.
var renameCmd = &cobra.Command{
	Use:   "rename <old@domain> <new-local-part>",
	Short: "Rename a mailbox, keeping its contents",
	Long: `Rename changes a mailbox's local-part through the provider's update
call, so mail and settings survive. Remember to update the domain's YAML
afterwards; a sync with the old name still declared would recreate it.`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func init() {
	RootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	oldName, domain, ok := strings.Cut(args[0], "@")
	if !ok || oldName == "" || domain == "" {
		return fmt.Errorf("first argument must be a full address, got %q", args[0])
	}
	newName := args[1]
	if strings.Contains(newName, "@") {
		return fmt.Errorf("second argument must be a bare local-part, got %q", newName)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	api := rackspace.NewClient(cfg.Rackspace, l)

	applier := mailbox.NewApplier(api, domain, l)
	if err := applier.Rename(ctx, oldName, newName); err != nil {
		return err
	}

	l.Info("Mailbox renamed")
	return nil
}
