package ledger

import (
	"net/url"
	"strings"
	"sync"
)

// Query parameter names mirrored into the address.
const (
	ParamCategory = "category"
	ParamSearch   = "search"
)

// CategoryAll disables the category constraint.
const CategoryAll = "all"

// LedgerPath is the address of the ledger view.
const LedgerPath = "/transactions"

// Query is the navigable part of the query state.
type Query struct {
	Category string
	Search   string
}

// EncodeQuery returns the canonical parameters for q.
func EncodeQuery(q Query) url.Values {
	values := url.Values{}
	if c := strings.ToLower(strings.TrimSpace(q.Category)); c != "" && c != CategoryAll {
		values.Set(ParamCategory, c)
	}
	if q.Search != "" {
		values.Set(ParamSearch, q.Search)
	}
	return values
}

// DecodeQuery reads parameters into a Query. A missing category means all.
func DecodeQuery(values url.Values) Query {
	q := Query{Category: CategoryAll, Search: values.Get(ParamSearch)}
	if c := strings.TrimSpace(values.Get(ParamCategory)); c != "" {
		q.Category = c
	}
	return q
}

// Location is a navigable address.
type Location struct {
	Path  string
	Query Query
}

// String renders the location as path?query.
func (l Location) String() string {
	encoded := EncodeQuery(l.Query).Encode()
	if encoded == "" {
		return l.Path
	}
	return l.Path + "?" + encoded
}

// ParseLocation parses an address such as "/transactions?category=bills".
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	path := u.Path
	if path == "" {
		path = LedgerPath
	}
	return Location{Path: path, Query: DecodeQuery(u.Query())}, nil
}

// CategoryLink is the navigation issued when a category label is selected.
func CategoryLink(category string) Location {
	return Location{Path: LedgerPath, Query: Query{Category: category}}
}

// RecipientLink is the navigation issued when a sender or recipient label is selected.
func RecipientLink(description string) Location {
	return Location{Path: LedgerPath, Query: Query{Category: CategoryAll, Search: description}}
}

// Navigator owns the current address.
type Navigator interface {
	Location() Location
	Replace(loc Location)
	Push(loc Location)
}

// History is an in-memory Navigator with a back stack.
type History struct {
	onChange func(Location)
	stack    []Location
	mu       sync.Mutex
}

// NewHistory starts a history at start.
func NewHistory(start Location) *History {
	return &History{stack: []Location{start}}
}

// OnChange registers a callback for every address change.
func (h *History) OnChange(fn func(Location)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Location returns the current address.
func (h *History) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[len(h.stack)-1]
}

// Replace swaps the current address without adding a history entry.
func (h *History) Replace(loc Location) {
	h.mu.Lock()
	h.stack[len(h.stack)-1] = loc
	fn := h.onChange
	h.mu.Unlock()
	if fn != nil {
		fn(loc)
	}
}

// Push adds a history entry.
func (h *History) Push(loc Location) {
	h.mu.Lock()
	h.stack = append(h.stack, loc)
	fn := h.onChange
	h.mu.Unlock()
	if fn != nil {
		fn(loc)
	}
}

// Back pops the current entry. It reports false at the first entry.
func (h *History) Back() (Location, bool) {
	h.mu.Lock()
	if len(h.stack) == 1 {
		loc := h.stack[0]
		h.mu.Unlock()
		return loc, false
	}
	h.stack = h.stack[:len(h.stack)-1]
	loc := h.stack[len(h.stack)-1]
	fn := h.onChange
	h.mu.Unlock()
	if fn != nil {
		fn(loc)
	}
	return loc, true
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}
