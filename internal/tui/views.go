package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/tui/viewmodel"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateLoading:
		return m.renderLoading()
	case StateUnavailable:
		return m.renderUnavailable()
	case StateHelp:
		return m.renderHelp()
	case StateCategories:
		return m.wrapWithBorder(m.categories.View())
	default:
		return m.wrapWithBorder(m.renderLedger())
	}
}

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("Loading ledger..."),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("q to quit"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderUnavailable replaces the ledger when no data could be fetched.
func (m Model) renderUnavailable() string {
	detail := "The ledger source returned no data."
	if m.lastError != nil {
		detail = m.lastError.Error()
	}

	content := m.theme.BorderedBox.
		Width(min(70, max(30, m.width-4))).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.StatusError.Render("Transactions are unavailable"),
			"",
			m.theme.Normal.Render(detail),
			"",
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("R to retry · q to quit"),
		))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderLedger renders the summary, search line and table.
func (m Model) renderLedger() string {
	if m.pipeline == nil {
		return ""
	}
	v := m.pipeline.View()
	st := m.pipeline.State()

	lines := []string{
		m.theme.Title.Render("Ledger") + "  " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.history.Location().String()),
		m.theme.Subtitle.Render(viewmodel.Summary(st, v)),
		m.renderTotals(v.Totals),
		m.renderSearch(st),
		m.list.View(),
	}
	if v.HasMore {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Muted).
			Render(fmt.Sprintf("%d more below, scroll to the end to load", v.TotalFilteredCount-len(v.VisibleRecords))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTotals(t ledger.Totals) string {
	net := m.theme.Income
	if t.Net.Sign() < 0 {
		net = m.theme.Expense
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s",
		m.theme.Bold.Render("In"), m.theme.Income.Render(viewmodel.FormatDecimal(t.Income)),
		m.theme.Bold.Render("Out"), m.theme.Expense.Render(viewmodel.FormatDecimal(t.Expenses)),
		m.theme.Bold.Render("Net"), net.Render(viewmodel.FormatDecimal(t.Net)),
	)
}

func (m Model) renderSearch(st ledger.State) string {
	if m.searching {
		line := m.search.View()
		if m.pipeline.SearchPending() {
			line += " " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render("…")
		}
		return line
	}
	if st.SearchTerm != "" {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("/ " + st.SearchTerm)
	}
	return ""
}

// renderHelp renders the help screen.
func (m Model) renderHelp() string {
	content := m.theme.BorderedBox.
		Width(min(80, max(40, m.width-4))).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.Title.Render("Keys"),
			"",
			m.help.FullHelpView(m.keymap.FullHelp()),
			"",
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press ? or Esc to close help"),
		))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// wrapWithBorder adds a border and the status bar around content.
func (m Model) wrapWithBorder(content string) string {
	full := lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
	return m.theme.BorderedBox.
		Width(max(0, m.width-2)).
		Render(full)
}

// renderStatusBar renders the bottom status bar.
func (m Model) renderStatusBar() string {
	left := "Ledger"
	if m.state == StateCategories {
		left = "Categories"
	}
	if m.searching {
		left = "Search"
	}

	status := m.theme.StatusInfo.Render(left) + "  " + m.help.View(m.keymap)
	if m.lastError != nil {
		status += "  " + m.theme.StatusWarning.Render(m.lastError.Error())
	}
	return status
}
