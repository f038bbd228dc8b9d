package tui

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/tui/components"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
	"github.com/Veraticus/spice-ledger/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current state of the TUI.
type State int

const (
	StateLoading State = iota
	StateLedger
	StateCategories
	StateUnavailable
	StateHelp
)

// notifier forwards pipeline changes made off the Update loop, such as a
// settled search debounce, to the running program.
type notifier struct {
	program atomic.Pointer[tea.Program]
}

func (n *notifier) changed() {
	if n == nil {
		return
	}
	if p := n.program.Load(); p != nil {
		// Send blocks until the event loop reads it; never from the caller.
		go p.Send(pipelineChangedMsg{})
	}
}

// Model holds the main TUI state.
type Model struct {
	ctx        context.Context
	theme      themes.Theme
	lastError  error
	pipeline   *ledger.Pipeline
	history    *ledger.History
	notify     *notifier
	logger     *slog.Logger
	config     Config
	keymap     KeyMap
	help       help.Model
	search     textinput.Model
	categories components.CategoriesModel
	list       components.LedgerListModel
	records    []model.Transaction
	width      int
	height     int
	state      State
	prevState  State
	searching  bool
	closed     bool
	quitting   bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config, n *notifier) Model {
	search := textinput.New()
	search.Placeholder = "Search description, category or amount..."
	search.Prompt = "/ "
	search.CharLimit = 80

	m := Model{
		ctx:        ctx,
		state:      StateLoading,
		config:     cfg,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		theme:      cfg.Theme,
		history:    ledger.NewHistory(cfg.Start),
		notify:     n,
		logger:     common.Component("tui"),
		search:     search,
		list:       components.NewLedgerList(cfg.Theme),
		categories: components.NewCategories(cfg.Theme),
		width:      cfg.Width,
		height:     cfg.Height,
	}
	m.handleResize()
	return m
}

// Init starts loading the ledger.
func (m Model) Init() tea.Cmd {
	return loadRecords(m.ctx, m.config.Source, false)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()

	case recordsLoadedMsg:
		m.handleRecords(msg)

	case pipelineChangedMsg:
		// the frame is rebuilt below

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	m.syncList()
	return m, cmd
}

// Pipeline returns the mounted pipeline, nil before the first load.
func (m Model) Pipeline() *ledger.Pipeline {
	return m.pipeline
}

// Location returns the current ledger address.
func (m Model) Location() ledger.Location {
	return m.history.Location()
}

func (m *Model) handleRecords(msg recordsLoadedMsg) {
	if msg.err != nil {
		m.lastError = msg.err
		common.LogError(msg.err, "Failed to load ledger", common.Fields{"refresh": msg.refresh})
		if m.pipeline == nil {
			m.state = StateUnavailable
		}
		return
	}

	m.lastError = nil
	m.records = msg.records
	if m.pipeline == nil {
		m.mount(m.history.Location())
	} else {
		m.pipeline.SetRecords(msg.records)
	}
	if m.state == StateLoading || m.state == StateUnavailable {
		m.state = StateLedger
	}
	m.logger.Debug("Ledger loaded", "records", len(msg.records), "refresh", msg.refresh)
}

// mount builds a pipeline seeded from loc. Sort and grouping carry over from
// the previous pipeline, which is closed.
func (m *Model) mount(loc ledger.Location) {
	sortKey, groupKey := ledger.DefaultSortKey, ledger.GroupNone
	if m.pipeline != nil {
		st := m.pipeline.State()
		sortKey, groupKey = st.SortKey, st.GroupKey
		m.pipeline.Close()
	}

	opts := slices.Clone(m.config.PipelineOptions)
	opts = append(opts,
		ledger.WithNavigator(m.history),
		ledger.WithLocation(loc),
		ledger.WithOnChange(m.notify.changed),
	)
	m.pipeline = ledger.NewPipeline(m.records, opts...)

	if err := m.pipeline.SetSortKey(sortKey); err != nil {
		m.logger.Debug("Sort not carried over", "sort", sortKey, "error", err)
	}
	if err := m.pipeline.SetGroupKey(groupKey); err != nil {
		m.logger.Debug("Grouping not carried over", "group", groupKey, "error", err)
	}
	m.search.SetValue(m.pipeline.State().SearchTerm)
	m.list.Top()
}

// navigate follows a link to another ledger address.
func (m *Model) navigate(loc ledger.Location) {
	m.history.Push(loc)
	m.mount(loc)
}

func (m *Model) back() {
	if loc, ok := m.history.Back(); ok {
		m.mount(loc)
	}
}

// teardown closes the pipeline and stops reacting to the list.
func (m *Model) teardown() {
	if m.closed {
		return
	}
	m.closed = true
	if m.pipeline != nil {
		m.pipeline.Close()
	}
}

func (m *Model) quit() tea.Cmd {
	m.teardown()
	m.quitting = true
	return tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m.quit()
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch m.state {
	case StateLoading:
		if key.Matches(msg, m.keymap.Quit) {
			return m.quit()
		}

	case StateUnavailable:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m.quit()
		case key.Matches(msg, m.keymap.Refresh):
			m.state = StateLoading
			return loadRecords(m.ctx, m.config.Source, true)
		}

	case StateHelp:
		if key.Matches(msg, m.keymap.Help, m.keymap.Back, m.keymap.Quit) {
			m.state = m.prevState
		}

	case StateCategories:
		return m.handleCategoriesKey(msg)

	case StateLedger:
		return m.handleLedgerKey(msg)
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.pipeline.FlushSearch()
		m.searching = false
		m.search.Blur()
		return nil
	case tea.KeyEsc:
		m.pipeline.ClearSearch()
		m.search.SetValue("")
		m.searching = false
		m.search.Blur()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.pipeline.SetSearchTerm(value)
	}
	return cmd
}

func (m *Model) handleCategoriesKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()
	case key.Matches(msg, m.keymap.Help):
		m.prevState, m.state = m.state, StateHelp
	case key.Matches(msg, m.keymap.Back, m.keymap.Categories):
		m.state = StateLedger
	case key.Matches(msg, m.keymap.Select):
		if opt, ok := m.categories.Selected(); ok {
			m.navigate(ledger.CategoryLink(opt.Key))
		}
		m.state = StateLedger
	default:
		m.categories, _ = m.categories.Update(msg)
	}
	return nil
}

func (m *Model) handleLedgerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()

	case key.Matches(msg, m.keymap.Help):
		m.prevState, m.state = m.state, StateHelp

	case key.Matches(msg, m.keymap.Search):
		m.searching = true
		m.search.SetValue(m.pipeline.State().SearchTerm)
		m.search.CursorEnd()
		return m.search.Focus()

	case key.Matches(msg, m.keymap.CycleSort):
		v, st := m.pipeline.View(), m.pipeline.State()
		if err := m.pipeline.SetSortKey(viewmodel.NextSort(v.AvailableSortOptions, st.SortKey)); err != nil {
			m.lastError = err
		}

	case key.Matches(msg, m.keymap.CycleGroup):
		v, st := m.pipeline.View(), m.pipeline.State()
		if err := m.pipeline.SetGroupKey(viewmodel.NextGroup(v.AvailableGroupOptions, st.GroupKey)); err != nil {
			m.lastError = err
		}

	case key.Matches(msg, m.keymap.Categories):
		m.categories.SetOptions(m.pipeline.View().AvailableCategories, m.pipeline.State().Category)
		m.state = StateCategories

	case key.Matches(msg, m.keymap.Recipient):
		if tx, ok := m.list.Selected(); ok && tx.Description != "" {
			m.navigate(ledger.RecipientLink(tx.Description))
		}

	case key.Matches(msg, m.keymap.Select):
		if tx, ok := m.list.Selected(); ok && tx.CategoryKey() != "" {
			m.navigate(ledger.CategoryLink(tx.CategoryKey()))
		}

	case key.Matches(msg, m.keymap.ClearAll):
		m.pipeline.ClearFilters()
		m.search.SetValue("")

	case key.Matches(msg, m.keymap.Back):
		m.back()

	case key.Matches(msg, m.keymap.Refresh):
		return loadRecords(m.ctx, m.config.Source, true)

	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.revealAtEnd()
		return cmd
	}
	return nil
}

// revealAtEnd loads the next page once the cursor reaches the last row.
func (m *Model) revealAtEnd() {
	if m.closed || m.pipeline == nil || !m.list.AtEnd() {
		return
	}
	if m.pipeline.View().HasMore {
		m.pipeline.LoadMore()
	}
}

func (m *Model) syncList() {
	if m.pipeline == nil || m.closed {
		return
	}
	m.list.SetRows(viewmodel.Rows(m.pipeline.View()))
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	// border, title, summary, totals, search, footer and status lines
	m.list.Resize(m.width-4, m.height-10)
	m.categories.Resize(m.width-4, m.height-6)
	m.search.Width = max(20, m.width-10)
	m.help.Width = m.width - 4
}
