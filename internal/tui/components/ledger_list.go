// Package components holds the Bubble Tea widgets composed by the ledger TUI.
package components

import (
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
	"github.com/Veraticus/spice-ledger/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LedgerListModel renders the visible window of the ledger as a table.
type LedgerListModel struct {
	theme  themes.Theme
	rows   []viewmodel.Row
	table  table.Model
	width  int
	height int
}

// listKeyMap keeps the table to cursor movement so letter keys stay free
// for the ledger actions.
func listKeyMap() table.KeyMap {
	km := table.DefaultKeyMap()
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.GotoTop = key.NewBinding(key.WithKeys("home", "g"))
	km.GotoBottom = key.NewBinding(key.WithKeys("end", "G"))
	return km
}

// NewLedgerList creates an empty ledger table.
func NewLedgerList(theme themes.Theme) LedgerListModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.KeyMap = listKeyMap()

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	m := LedgerListModel{
		theme:  theme,
		table:  t,
		width:  80,
		height: 14,
	}
	m.updateColumnWidths()
	return m
}

// SetRows replaces the rows, keeping the cursor on a row when there is one.
func (m *LedgerListModel) SetRows(rows []viewmodel.Row) {
	m.rows = rows
	m.table.SetRows(buildTableRows(rows))
	switch cursor := m.table.Cursor(); {
	case len(rows) == 0:
	case cursor < 0:
		m.table.SetCursor(0)
	case cursor >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

// Update moves the cursor.
func (m LedgerListModel) Update(msg tea.Msg) (LedgerListModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Cursor returns the selected row index.
func (m LedgerListModel) Cursor() int {
	return m.table.Cursor()
}

// AtEnd reports whether the cursor is on the last row.
func (m LedgerListModel) AtEnd() bool {
	return len(m.rows) > 0 && m.table.Cursor() == len(m.rows)-1
}

// Selected returns the record under the cursor. Group headers select nothing.
func (m LedgerListModel) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) || !m.rows[i].IsRecord() {
		return model.Transaction{}, false
	}
	return m.rows[i].Record, true
}

// Top moves the cursor to the first row.
func (m *LedgerListModel) Top() {
	m.table.GotoTop()
}

// Len returns the number of rows, headers included.
func (m LedgerListModel) Len() int {
	return len(m.rows)
}

// View renders the table.
func (m LedgerListModel) View() string {
	if len(m.rows) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No transactions match.")
	}
	return m.table.View()
}

// Resize updates the component size.
func (m *LedgerListModel) Resize(width, height int) {
	m.width = width
	m.height = height
	// header row + border
	m.table.SetHeight(max(1, height-2))
	m.updateColumnWidths()
}

func (m *LedgerListModel) updateColumnWidths() {
	available := max(60, m.width-8)
	m.table.SetColumns([]table.Column{
		{Title: "Date", Width: 12},
		{Title: "Description", Width: max(16, available*45/100)},
		{Title: "Category", Width: max(12, available*25/100)},
		{Title: "Amount", Width: max(12, available-12-available*45/100-available*25/100)},
	})
}

func buildTableRows(rows []viewmodel.Row) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		if !row.IsRecord() {
			out = append(out, table.Row{
				"",
				fmt.Sprintf("▸ %s (%d)", row.Label, row.Count),
				"",
				row.Total,
			})
			continue
		}

		tx := row.Record
		category := ledger.DisplayCategory(tx.Category)
		if category == "" {
			category = ledger.LabelUncategorized
		}
		out = append(out, table.Row{
			viewmodel.FormatDate(tx.Date),
			viewmodel.SanitizeForDisplay(tx.Description),
			category,
			viewmodel.FormatAmount(tx.Amount),
		})
	}
	return out
}
