// Package main runs the ledger browser against the bundled sample ledger.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/source"
	"github.com/Veraticus/spice-ledger/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The browser owns the terminal.
	if err := common.SetupLoggerTo(io.Discard, slog.LevelInfo, "text"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(ctx,
		tui.WithSource(source.NewCache(source.Fallback{})),
		tui.WithSize(120, 40),
	); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
