package ledger

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// GroupKey identifies a group strategy. GroupNone means a flat list.
type GroupKey string

// Group keys.
const (
	GroupNone      GroupKey = ""
	GroupCategory  GroupKey = "category"
	GroupMonth     GroupKey = "month"
	GroupType      GroupKey = "type"
	GroupRecipient GroupKey = "recipient"
)

// Labels used for records whose grouping field is missing or malformed.
const (
	LabelUncategorized = "Uncategorized"
	LabelUnknownDate   = "Unknown date"
	LabelUnknownAmount = "Unknown amount"
	LabelIncome        = "Income"
	LabelExpenses      = "Expenses"
)

// Group is one bucket of a partition.
type Group struct {
	Total   decimal.Decimal
	Label   string
	Records []model.Transaction
}

// GroupStrategy assigns each record a group label.
type GroupStrategy struct {
	Label       func(tx model.Transaction) string
	Key         GroupKey
	DisplayName string
}

// GroupOption is a selectable grouping exposed to the UI.
type GroupOption struct {
	Key         GroupKey
	DisplayName string
}

// Partition splits records into groups ordered by first appearance. Every
// record lands in exactly one group and keeps its relative order.
func Partition(records []model.Transaction, strategy GroupStrategy) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, tx := range records {
		label := strategy.Label(tx)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Records = append(groups[i].Records, tx)
		if tx.Amount.Valid {
			groups[i].Total = groups[i].Total.Add(tx.Amount.Decimal)
		}
	}
	return groups
}

// builtinGroups returns the standard strategies using tag for month names.
func builtinGroups(tag language.Tag) []GroupStrategy {
	months := monthNamesFor(tag)
	return []GroupStrategy{
		{Key: GroupCategory, DisplayName: "Category", Label: categoryLabel},
		{Key: GroupMonth, DisplayName: "Month", Label: func(tx model.Transaction) string {
			return monthLabel(tx, months)
		}},
		{Key: GroupType, DisplayName: "Type", Label: typeLabel},
		{Key: GroupRecipient, DisplayName: "Recipient", Label: func(tx model.Transaction) string {
			return tx.Description
		}},
	}
}

// DisplayCategory upper-cases the first letter and lower-cases the rest.
func DisplayCategory(category string) string {
	if category == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(category)
	return string(unicode.ToUpper(r)) + strings.ToLower(category[size:])
}

func categoryLabel(tx model.Transaction) string {
	if strings.TrimSpace(tx.Category) == "" {
		return LabelUncategorized
	}
	return DisplayCategory(tx.Category)
}

func monthLabel(tx model.Transaction, months monthNames) string {
	ts, ok := tx.Timestamp()
	if !ok {
		return LabelUnknownDate
	}
	return fmt.Sprintf("%s %d", months[ts.Month()-1], ts.Year())
}

func typeLabel(tx model.Transaction) string {
	if !tx.Amount.Valid {
		return LabelUnknownAmount
	}
	if tx.IsIncome() {
		return LabelIncome
	}
	return LabelExpenses
}
