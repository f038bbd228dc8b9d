package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
	"github.com/Veraticus/spice-ledger/internal/tui/viewmodel"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CategoriesModel lists the categories of the unfiltered ledger with their
// totals. Choosing one navigates the ledger to it.
type CategoriesModel struct {
	theme   themes.Theme
	active  string
	options []ledger.CategoryOption
	cursor  int
	offset  int
	width   int
	height  int
}

// NewCategories creates an empty categories view.
func NewCategories(theme themes.Theme) CategoriesModel {
	return CategoriesModel{theme: theme, width: 60, height: 20}
}

// SetOptions replaces the options and moves the cursor to active.
func (m *CategoriesModel) SetOptions(options []ledger.CategoryOption, active string) {
	m.options = options
	m.active = active
	m.cursor = 0
	for i, opt := range options {
		if opt.Key == active {
			m.cursor = i
			break
		}
	}
	m.clampOffset()
}

// Update moves the cursor.
func (m CategoriesModel) Update(msg tea.Msg) (CategoriesModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.options) == 0 {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(m.options)-1)
	case "k", "up":
		m.cursor = max(m.cursor-1, 0)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.options) - 1
	}
	m.clampOffset()
	return m, nil
}

// Selected returns the option under the cursor.
func (m CategoriesModel) Selected() (ledger.CategoryOption, bool) {
	if m.cursor < 0 || m.cursor >= len(m.options) {
		return ledger.CategoryOption{}, false
	}
	return m.options[m.cursor], true
}

// Resize updates the component size.
func (m *CategoriesModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}

func (m *CategoriesModel) visibleRows() int {
	// title + blank line
	return max(1, m.height-2)
}

func (m *CategoriesModel) clampOffset() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// View renders the list.
func (m CategoriesModel) View() string {
	lines := []string{m.theme.Title.Render("Categories"), ""}

	end := min(len(m.options), m.offset+m.visibleRows())
	labelWidth := max(12, m.width-34)
	for i := m.offset; i < end; i++ {
		opt := m.options[i]

		marker := " "
		if opt.Key == m.active {
			marker = "●"
		}
		line := fmt.Sprintf("%s %s %-*s %5d  %14s",
			marker,
			themes.GetCategoryIcon(opt.Key),
			labelWidth,
			viewmodel.TruncateString(opt.Label, labelWidth),
			opt.Count,
			viewmodel.FormatDecimal(opt.Total),
		)

		switch {
		case i == m.cursor:
			line = m.theme.Selected.Render(line)
		case opt.Total.Sign() < 0:
			line = m.theme.Expense.Render(line)
		default:
			line = m.theme.Income.Render(line)
		}
		lines = append(lines, line)
	}

	if len(m.options) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No categories."))
	}

	return strings.Join(lines, "\n")
}
