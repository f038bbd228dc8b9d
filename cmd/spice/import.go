package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Examples:
  # Import a single statement
  spice import ~/Downloads/chase_jan_2024.qfx

  # Import every statement in a directory
  spice import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(files), "Parsing statements")
	records, skipped := parseStatements(ctx, ofx.NewParser(), files, func() { _ = bar.Add(1) })
	if err := ctx.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		_, _ = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions from %d files", len(records), len(files)-skipped)))
		return nil
	}
	if len(records) == 0 {
		return common.NewUserError("no transactions found to import", common.ErrNoTransactions)
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

	saved, err := store.SaveTransactions(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	summary := fmt.Sprintf("%s\n%d parsed · %d already in the ledger · %d files skipped",
		cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions", saved)),
		len(records), len(records)-saved, skipped)
	_, _ = fmt.Fprintln(out, cli.RenderBox("Import complete", summary))
	return nil
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", common.ErrNotFound)
	}
	return files, nil
}

// parseStatements parses every file, dropping records whose ID was already
// seen. Files that fail to parse are logged and counted as skipped.
func parseStatements(ctx context.Context, importer service.Importer, files []string, progress func()) ([]model.Transaction, int) {
	var records []model.Transaction
	seen := make(map[string]bool)
	skipped := 0

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		parsed, err := parseStatement(ctx, importer, path)
		progress()
		if err != nil {
			common.LogError(err, "Failed to parse statement", common.Fields{"file": filepath.Base(path)})
			skipped++
			continue
		}

		for _, tx := range parsed {
			if seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
			records = append(records, tx)
		}
		slog.Debug("Parsed statement", "file", filepath.Base(path), "transactions", len(parsed))
	}

	return records, skipped
}

func parseStatement(ctx context.Context, importer service.Importer, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return importer.ParseFile(ctx, f)
}
