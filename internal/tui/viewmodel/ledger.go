// Package viewmodel turns pipeline views into display-ready rows and strings.
// Nothing here touches the terminal, so rendering rules can be tested as data.
package viewmodel

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RowKind distinguishes record rows from group headers.
type RowKind int

const (
	// RowRecord is a single transaction.
	RowRecord RowKind = iota
	// RowGroupHeader opens a group.
	RowGroupHeader
)

// Row is one line of the ledger table.
type Row struct {
	Record model.Transaction
	Label  string // group label for headers
	Total  string // formatted group total for headers
	Kind   RowKind
	Count  int // records in the group for headers
}

// IsRecord reports whether the row holds a transaction.
func (r Row) IsRecord() bool {
	return r.Kind == RowRecord
}

// Rows flattens a view into table rows. Grouped views get a header before
// each group's records.
func Rows(v ledger.View) []Row {
	if v.Groups == nil {
		rows := make([]Row, 0, len(v.VisibleRecords))
		for _, tx := range v.VisibleRecords {
			rows = append(rows, Row{Kind: RowRecord, Record: tx})
		}
		return rows
	}

	rows := make([]Row, 0, len(v.VisibleRecords)+len(v.Groups))
	for _, g := range v.Groups {
		rows = append(rows, Row{
			Kind:  RowGroupHeader,
			Label: g.Label,
			Total: FormatDecimal(g.Total),
			Count: len(g.Records),
		})
		for _, tx := range g.Records {
			rows = append(rows, Row{Kind: RowRecord, Record: tx})
		}
	}
	return rows
}

var printer = message.NewPrinter(language.English)

// FormatDecimal renders a signed currency amount with grouping, e.g. -$1,204.50.
func FormatDecimal(d decimal.Decimal) string {
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + printer.Sprintf("$%.2f", d.Abs().Round(2).InexactFloat64())
}

// FormatAmount renders a record amount. Income is prefixed with +.
func FormatAmount(a decimal.NullDecimal) string {
	if !a.Valid {
		return "n/a"
	}
	if a.Decimal.Sign() > 0 {
		return "+" + FormatDecimal(a.Decimal)
	}
	return FormatDecimal(a.Decimal)
}

// FormatDate renders the record date, or the raw value when it does not parse.
func FormatDate(raw string) string {
	t, ok := model.ParseDate(raw)
	if !ok {
		if raw == "" {
			return "n/a"
		}
		return raw
	}
	return t.Format("Jan 02, 2006")
}

// TruncateString truncates a string to maxLen runes with an ellipsis.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeForDisplay replaces control characters and collapses whitespace.
func SanitizeForDisplay(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Summary is the header line above the table.
func Summary(state ledger.State, v ledger.View) string {
	shown := len(v.VisibleRecords)
	parts := []string{fmt.Sprintf("%d of %d", shown, v.TotalFilteredCount)}

	if state.Category != "" && state.Category != ledger.CategoryAll {
		parts = append(parts, "category "+CategoryLabel(v.AvailableCategories, state.Category))
	}
	if state.DebouncedSearchTerm != "" {
		parts = append(parts, fmt.Sprintf("search %q", state.DebouncedSearchTerm))
	}
	parts = append(parts, "sort "+SortLabel(v.AvailableSortOptions, state.SortKey))
	if state.GroupKey != ledger.GroupNone {
		parts = append(parts, "by "+GroupLabel(v.AvailableGroupOptions, state.GroupKey))
	}
	return strings.Join(parts, " · ")
}

// CategoryLabel finds the display label for a category key.
func CategoryLabel(options []ledger.CategoryOption, key string) string {
	for _, opt := range options {
		if opt.Key == key {
			return opt.Label
		}
	}
	return ledger.DisplayCategory(key)
}

// SortLabel finds the display name for a sort key.
func SortLabel(options []ledger.SortOption, key ledger.SortKey) string {
	for _, opt := range options {
		if opt.Key == key {
			return opt.DisplayName
		}
	}
	return string(key)
}

// GroupLabel finds the display name for a group key.
func GroupLabel(options []ledger.GroupOption, key ledger.GroupKey) string {
	if key == ledger.GroupNone {
		return "None"
	}
	for _, opt := range options {
		if opt.Key == key {
			return opt.DisplayName
		}
	}
	return string(key)
}

// NextSort returns the sort key after current, wrapping around.
func NextSort(options []ledger.SortOption, current ledger.SortKey) ledger.SortKey {
	if len(options) == 0 {
		return current
	}
	for i, opt := range options {
		if opt.Key == current {
			return options[(i+1)%len(options)].Key
		}
	}
	return options[0].Key
}

// NextGroup cycles through no grouping and then each option.
func NextGroup(options []ledger.GroupOption, current ledger.GroupKey) ledger.GroupKey {
	keys := make([]ledger.GroupKey, 0, len(options)+1)
	keys = append(keys, ledger.GroupNone)
	for _, opt := range options {
		keys = append(keys, opt.Key)
	}
	for i, k := range keys {
		if k == current {
			return keys[(i+1)%len(keys)]
		}
	}
	return ledger.GroupNone
}
