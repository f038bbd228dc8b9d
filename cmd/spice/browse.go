package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/tui"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the ledger interactively",
		Long: `Open the ledger browser. Search with /, cycle sort with o and grouping
with b, pick a category with c and follow a payee with r.

Examples:
  # Start on the groceries category
  spice browse --location "/transactions?category=groceries"

  # Browse a JSON snapshot instead of the database
  spice browse --snapshot ~/ledger.json`,
		RunE: runBrowse,
	}

	cmd.Flags().String("location", ledger.LedgerPath, "ledger address to start from")
	cmd.Flags().String("snapshot", "", "read records from a JSON snapshot file")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rawLocation, _ := cmd.Flags().GetString("location")
	snapshot, _ := cmd.Flags().GetString("snapshot")
	themeName, _ := cmd.Flags().GetString("theme")

	start, err := ledger.ParseLocation(rawLocation)
	if err != nil {
		return common.NewUserError("invalid --location", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	closeLog, err := redirectLogging(settings)
	if err != nil {
		return err
	}
	defer closeLog()

	var store service.Fetcher
	if snapshot == "" {
		s, err := initStorage(ctx, settings)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	return tui.Run(ctx,
		tui.WithSource(newSource(store, snapshot, settings)),
		tui.WithTheme(themes.GetTheme(themeName)),
		tui.WithPipelineOptions(settings.PipelineOptions()...),
		tui.WithStartLocation(start),
	)
}

// redirectLogging keeps log output off the terminal while the browser owns
// it. With SPICE_DEBUG set, logs go to that file instead.
func redirectLogging(settings *config.Settings) (func(), error) {
	level := common.ParseLevel(settings.LogLevel)

	path := viper.GetString("debug")
	if path == "" {
		if err := common.SetupLoggerTo(io.Discard, level, settings.LogFormat); err != nil {
			return nil, err
		}
		return func() {}, nil
	}

	f, err := tea.LogToFile(config.ExpandPath(path), "spice")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	if err := common.SetupLoggerTo(f, level, settings.LogFormat); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		_ = common.SetupLogger(level, settings.LogFormat)
		_ = f.Close()
	}, nil
}
