package tui

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/spice-ledger/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

const loadTimeout = 30 * time.Second

var errNoSource = errors.New("ledger source not configured")

// refresher is implemented by sources that cache, like source.Cache.
type refresher interface {
	Refresh()
}

// loadRecords fetches the ledger. A refresh drops any cached snapshot first.
func loadRecords(ctx context.Context, source service.Fetcher, refresh bool) tea.Cmd {
	return func() tea.Msg {
		if source == nil {
			return recordsLoadedMsg{err: errNoSource, refresh: refresh}
		}
		if r, ok := source.(refresher); ok && refresh {
			r.Refresh()
		}

		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()

		records, err := source.Fetch(ctx)
		return recordsLoadedMsg{records: records, err: err, refresh: refresh}
	}
}
