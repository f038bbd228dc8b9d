// Package ledger implements the transaction query pipeline: filtering, sorting,
// grouping and pagination of an in-memory ledger, kept in sync with a debounced
// search box and a navigable address.
package ledger

import (
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// Filter name prefixes with replace semantics inside a Pipeline.
const (
	CategoryPrefix = "category:"
	SearchPrefix   = "search:"
)

// Filter is a named predicate over transactions.
type Filter interface {
	Name() string
	DisplayName() string
	Matches(tx model.Transaction) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc struct {
	Fn      func(tx model.Transaction) bool
	Key     string
	Display string
}

// Name returns the unique key of the filter.
func (f FilterFunc) Name() string { return f.Key }

// DisplayName returns the label shown to the user.
func (f FilterFunc) DisplayName() string { return f.Display }

// Matches reports whether tx passes the filter.
func (f FilterFunc) Matches(tx model.Transaction) bool { return f.Fn(tx) }

// CategoryFilter matches records whose category equals category, ignoring case.
func CategoryFilter(category string) Filter {
	key := strings.ToLower(category)
	return FilterFunc{
		Key:     CategoryPrefix + key,
		Display: "Category: " + category,
		Fn: func(tx model.Transaction) bool {
			return tx.CategoryKey() == key
		},
	}
}

// SearchFilter matches a case-insensitive substring of the description, the
// category, or the decimal form of the amount. An empty term matches everything.
func SearchFilter(term string) Filter {
	needle := strings.ToLower(term)
	return FilterFunc{
		Key:     SearchPrefix + term,
		Display: "Search: " + term,
		Fn: func(tx model.Transaction) bool {
			if needle == "" {
				return true
			}
			return strings.Contains(strings.ToLower(tx.Description), needle) ||
				strings.Contains(tx.CategoryKey(), needle) ||
				strings.Contains(tx.AmountString(), needle)
		},
	}
}

// IncomeFilter matches strictly positive amounts.
func IncomeFilter() Filter {
	return FilterFunc{
		Key:     "type:income",
		Display: "Income",
		Fn: func(tx model.Transaction) bool {
			return tx.Amount.Valid && tx.Amount.Decimal.Sign() > 0
		},
	}
}

// ExpenseFilter matches strictly negative amounts.
func ExpenseFilter() Filter {
	return FilterFunc{
		Key:     "type:expense",
		Display: "Expenses",
		Fn: func(tx model.Transaction) bool {
			return tx.Amount.Valid && tx.Amount.Decimal.Sign() < 0
		},
	}
}

// DateRangeFilter matches records dated within [from, to]. A zero bound is open.
func DateRangeFilter(from, to time.Time) Filter {
	return FilterFunc{
		Key:     "date:" + formatBound(from) + ".." + formatBound(to),
		Display: "Dates: " + formatBound(from) + " to " + formatBound(to),
		Fn: func(tx model.Transaction) bool {
			ts, ok := tx.Timestamp()
			if !ok {
				return false
			}
			if !from.IsZero() && ts.Before(from) {
				return false
			}
			if !to.IsZero() && ts.After(to) {
				return false
			}
			return true
		},
	}
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format(time.DateOnly)
}

// AmountRangeFilter matches amounts within [minAmount, maxAmount]. A nil bound is open.
func AmountRangeFilter(minAmount, maxAmount *decimal.Decimal) Filter {
	lo, hi := "*", "*"
	if minAmount != nil {
		lo = minAmount.String()
	}
	if maxAmount != nil {
		hi = maxAmount.String()
	}
	return FilterFunc{
		Key:     "amount:" + lo + ".." + hi,
		Display: "Amount: " + lo + " to " + hi,
		Fn: func(tx model.Transaction) bool {
			if !tx.Amount.Valid {
				return false
			}
			if minAmount != nil && tx.Amount.Decimal.LessThan(*minAmount) {
				return false
			}
			if maxAmount != nil && tx.Amount.Decimal.GreaterThan(*maxAmount) {
				return false
			}
			return true
		},
	}
}

// RecurringFilter matches recurring bills.
func RecurringFilter() Filter {
	return FilterFunc{
		Key:     "recurring",
		Display: "Recurring",
		Fn:      func(tx model.Transaction) bool { return tx.Recurring },
	}
}

// PaidFilter matches recurring bills by paid status.
func PaidFilter(paid bool) Filter {
	key, display := "paid:false", "Unpaid"
	if paid {
		key, display = "paid:true", "Paid"
	}
	return FilterFunc{
		Key:     key,
		Display: display,
		Fn: func(tx model.Transaction) bool {
			return tx.Recurring && tx.IsPaid == paid
		},
	}
}

// OverdueFilter matches overdue bills.
func OverdueFilter() Filter {
	return FilterFunc{
		Key:     "overdue",
		Display: "Overdue",
		Fn:      func(tx model.Transaction) bool { return tx.IsOverdue },
	}
}

// FilterSet is a set of filters keyed by name. Adding a filter whose name is
// already present replaces it in place.
type FilterSet struct {
	byName map[string]Filter
	order  []string
}

// NewFilterSet builds a set from filters, later duplicates replacing earlier ones.
func NewFilterSet(filters ...Filter) *FilterSet {
	s := &FilterSet{byName: make(map[string]Filter)}
	for _, f := range filters {
		s.Add(f)
	}
	return s
}

// Add installs f, replacing any filter with the same name.
func (s *FilterSet) Add(f Filter) {
	if s.byName == nil {
		s.byName = make(map[string]Filter)
	}
	if _, ok := s.byName[f.Name()]; !ok {
		s.order = append(s.order, f.Name())
	}
	s.byName[f.Name()] = f
}

// Remove drops the named filter and reports whether it was present.
func (s *FilterSet) Remove(name string) bool {
	if _, ok := s.byName[name]; !ok {
		return false
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// RemovePrefix drops every filter whose name starts with prefix.
func (s *FilterSet) RemovePrefix(prefix string) bool {
	removed := false
	for _, name := range s.Names() {
		if strings.HasPrefix(name, prefix) {
			removed = s.Remove(name) || removed
		}
	}
	return removed
}

// Get returns the named filter.
func (s *FilterSet) Get(name string) (Filter, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Len returns the number of active filters.
func (s *FilterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns filter names in install order.
func (s *FilterSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Filters returns the active filters in install order.
func (s *FilterSet) Filters() []Filter {
	if s == nil {
		return nil
	}
	out := make([]Filter, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *FilterSet) Clone() *FilterSet {
	return NewFilterSet(s.Filters()...)
}

// Matches reports whether tx passes every filter in the set.
func (s *FilterSet) Matches(tx model.Transaction) bool {
	if s == nil {
		return true
	}
	for _, name := range s.order {
		if !s.byName[name].Matches(tx) {
			return false
		}
	}
	return true
}

// ApplyFilters returns the records passing every filter, in input order.
func ApplyFilters(records []model.Transaction, set *FilterSet) []model.Transaction {
	if set.Len() == 0 {
		return records
	}
	out := make([]model.Transaction, 0, len(records))
	for _, tx := range records {
		if set.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
