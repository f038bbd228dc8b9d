package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	GroupHeader   lipgloss.Style
	Income        lipgloss.Style
	Expense       lipgloss.Style
	Box           lipgloss.Style
	BorderedBox   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
}

func newTheme(primary, foreground, subtle, muted, border, success, warning, failure, info, selectedFg lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Muted:   muted,
		Border:  border,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground),
		Subtitle: lipgloss.NewStyle().
			Foreground(subtle),
		Normal: lipgloss.NewStyle().
			Foreground(foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground),
		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(selectedFg).
			Bold(true),
		GroupHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Income: lipgloss.NewStyle().
			Foreground(success),
		Expense: lipgloss.NewStyle().
			Foreground(failure),

		Box: lipgloss.NewStyle().
			Padding(0, 1),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		StatusInfo: lipgloss.NewStyle().
			Foreground(info).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(failure).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(warning).
			Bold(true),
	}
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#7c3aed"), // primary
	lipgloss.Color("#fafafa"), // foreground
	lipgloss.Color("#a3a3a3"), // subtle
	lipgloss.Color("#737373"), // muted
	lipgloss.Color("#404040"), // border
	lipgloss.Color("#10b981"), // success
	lipgloss.Color("#f59e0b"), // warning
	lipgloss.Color("#ef4444"), // error
	lipgloss.Color("#3b82f6"), // info
	lipgloss.Color("#fafafa"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#a6adc8"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#89dceb"),
	lipgloss.Color("#1e1e2e"),
)

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// CategoryIcons maps lower-cased category names to icons.
var CategoryIcons = map[string]string{
	"all":           "∑",
	"bills":         "🧾",
	"dining out":    "🍕",
	"education":     "📚",
	"entertainment": "🎬",
	"general":       "📦",
	"groceries":     "🥬",
	"income":        "💰",
	"interest":      "📈",
	"personal care": "💅",
	"shopping":      "🛍",
	"transport":     "🚗",
	"bank fees":     "🏦",
}

// GetCategoryIcon returns an icon for a category key.
func GetCategoryIcon(key string) string {
	if icon, ok := CategoryIcons[key]; ok {
		return icon
	}
	return "•"
}
