package ledger

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

var (
	// ErrUnknownSortKey is returned when no sort strategy is registered for a key.
	ErrUnknownSortKey = errors.New("unknown sort key")
	// ErrUnknownGroupKey is returned when no group strategy is registered for a key.
	ErrUnknownGroupKey = errors.New("unknown group key")
)

// Registry maps keys to sort and group strategies. Each Pipeline owns one.
type Registry struct {
	sorts     map[SortKey]SortStrategy
	groups    map[GroupKey]GroupStrategy
	sortOrder []SortKey
	grpOrder  []GroupKey
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sorts:  make(map[SortKey]SortStrategy),
		groups: make(map[GroupKey]GroupStrategy),
	}
}

// NewDefaultRegistry returns a registry with the built-in strategies, using
// tag for locale-aware text order.
func NewDefaultRegistry(tag language.Tag) *Registry {
	r := NewRegistry()
	for _, s := range builtinSorts(tag) {
		r.RegisterSort(s)
	}
	for _, g := range builtinGroups(tag) {
		r.RegisterGroup(g)
	}
	return r
}

// RegisterSort adds or replaces a sort strategy.
func (r *Registry) RegisterSort(s SortStrategy) {
	if _, ok := r.sorts[s.Key]; !ok {
		r.sortOrder = append(r.sortOrder, s.Key)
	}
	r.sorts[s.Key] = s
}

// RegisterGroup adds or replaces a group strategy.
func (r *Registry) RegisterGroup(g GroupStrategy) {
	if _, ok := r.groups[g.Key]; !ok {
		r.grpOrder = append(r.grpOrder, g.Key)
	}
	r.groups[g.Key] = g
}

// Sort returns the strategy for key.
func (r *Registry) Sort(key SortKey) (SortStrategy, error) {
	s, ok := r.sorts[key]
	if !ok {
		return SortStrategy{}, fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	return s, nil
}

// Group returns the strategy for key. GroupNone is not a strategy.
func (r *Registry) Group(key GroupKey) (GroupStrategy, error) {
	g, ok := r.groups[key]
	if !ok {
		return GroupStrategy{}, fmt.Errorf("%w: %q", ErrUnknownGroupKey, key)
	}
	return g, nil
}

// SortOptions lists registered sorts in registration order.
func (r *Registry) SortOptions() []SortOption {
	out := make([]SortOption, 0, len(r.sortOrder))
	for _, k := range r.sortOrder {
		out = append(out, SortOption{Key: k, DisplayName: r.sorts[k].DisplayName})
	}
	return out
}

// GroupOptions lists registered groupings in registration order.
func (r *Registry) GroupOptions() []GroupOption {
	out := make([]GroupOption, 0, len(r.grpOrder))
	for _, k := range r.grpOrder {
		out = append(out, GroupOption{Key: k, DisplayName: r.groups[k].DisplayName})
	}
	return out
}
