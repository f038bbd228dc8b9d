package main

import (
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/source"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample transactions into the ledger database",
		Long: `Load the bundled sample ledger, or a JSON snapshot, into the database.

Examples:
  # Start with sample data
  spice seed

  # Replace the ledger with a snapshot
  spice seed --from ~/ledger.json --reset`,
		RunE: runSeed,
	}

	cmd.Flags().String("from", "", "JSON snapshot to load instead of the sample ledger")
	cmd.Flags().Bool("reset", false, "delete existing transactions first")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	from, _ := cmd.Flags().GetString("from")
	reset, _ := cmd.Flags().GetBool("reset")

	var src service.Fetcher = source.Fallback{}
	if from != "" {
		src = source.FileSource{Path: config.ExpandPath(from)}
	}
	records, err := src.Fetch(ctx)
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if reset {
		if err := store.DeleteAllTransactions(ctx); err != nil {
			return fmt.Errorf("failed to reset ledger: %w", err)
		}
	}

	saved, err := store.SaveTransactions(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to seed ledger: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Seeded %d of %d transactions into %s", saved, len(records), settings.DatabasePath)))
	return nil
}
