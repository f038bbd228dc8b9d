package tui

import "github.com/Veraticus/spice-ledger/internal/model"

// recordsLoadedMsg carries a fetched ledger snapshot.
type recordsLoadedMsg struct {
	err     error
	records []model.Transaction
	refresh bool
}

// pipelineChangedMsg is sent when the pipeline changes outside of Update,
// e.g. when the search debounce settles.
type pipelineChangedMsg struct{}
