package ledger

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// ErrClosed is returned by operations on a torn-down pipeline.
var ErrClosed = errors.New("pipeline closed")

// CategoryOption is a selectable category derived from the ledger.
type CategoryOption struct {
	Total decimal.Decimal
	Key   string // lower-cased match value, or CategoryAll
	Label string
	Count int
}

// Totals summarizes the filtered set.
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// View is everything the renderer needs for one frame.
type View struct {
	Totals                Totals
	VisibleRecords        []model.Transaction
	Groups                []Group // nil for a flat list
	AvailableCategories   []CategoryOption
	AvailableSortOptions  []SortOption
	AvailableGroupOptions []GroupOption
	TotalFilteredCount    int
	HasMore               bool
}

// State is a snapshot of the query state.
type State struct {
	SearchTerm          string
	DebouncedSearchTerm string
	Category            string
	SortKey             SortKey
	GroupKey            GroupKey
	ActiveFilters       []string
	Revealed            int
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	registry  *Registry
	scheduler Scheduler
	navigator Navigator
	seed      *Location
	onChange  func()
	logger    *slog.Logger
	locale    language.Tag
	pageSize  int
	debounce  time.Duration
}

// WithRegistry sets the strategy registry.
func WithRegistry(r *Registry) Option {
	return func(c *pipelineConfig) { c.registry = r }
}

// WithLocale sets the language used for text order.
func WithLocale(tag language.Tag) Option {
	return func(c *pipelineConfig) { c.locale = tag }
}

// WithPageSize sets the pagination page size.
func WithPageSize(n int) Option {
	return func(c *pipelineConfig) { c.pageSize = n }
}

// WithDebounce sets the search debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(c *pipelineConfig) { c.debounce = d }
}

// WithScheduler sets the scheduler used by the search debouncer.
func WithScheduler(s Scheduler) Option {
	return func(c *pipelineConfig) { c.scheduler = s }
}

// WithNavigator mirrors category and search into nav. Unless WithLocation is
// also given, the initial query state is seeded from nav's current location.
func WithNavigator(nav Navigator) Option {
	return func(c *pipelineConfig) { c.navigator = nav }
}

// WithLocation seeds the initial query state from loc.
func WithLocation(loc Location) Option {
	return func(c *pipelineConfig) { c.seed = &loc }
}

// WithOnChange registers a callback run after every state change. It is
// called without the pipeline lock held, possibly from a timer goroutine.
func WithOnChange(fn func()) Option {
	return func(c *pipelineConfig) { c.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *pipelineConfig) { c.logger = l }
}

type derivedKey struct {
	sortKey SortKey
	records uint64
	filters uint64
}

type viewKey struct {
	derivedKey
	groupKey GroupKey
	revealed int
}

// Pipeline owns the query state of one ledger view and derives its View.
type Pipeline struct {
	registry   *Registry
	navigator  Navigator
	debouncer  *Debouncer[string]
	onChange   func()
	logger     *slog.Logger
	text       *textOrder
	filters    *FilterSet
	lastQuery  string
	records    []model.Transaction
	categories []CategoryOption
	sorted     []model.Transaction
	view       View
	searchTerm string
	debounced  string
	category   string
	sortKey    SortKey
	groupKey   GroupKey
	window     Window
	sortedKey  derivedKey
	viewKey    viewKey
	recordsGen uint64
	filtersGen uint64
	catGen     uint64
	mu         sync.Mutex
	hasSorted  bool
	hasView    bool
	hasCats    bool
	closed     bool
}

// NewPipeline builds a pipeline over records.
func NewPipeline(records []model.Transaction, opts ...Option) *Pipeline {
	cfg := pipelineConfig{
		locale:   language.English,
		pageSize: DefaultPageSize,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewDefaultRegistry(cfg.locale)
	}

	p := &Pipeline{
		registry:  cfg.registry,
		navigator: cfg.navigator,
		onChange:  cfg.onChange,
		logger:    cfg.logger.With("component", "ledger"),
		text:      newTextOrder(cfg.locale),
		filters:   NewFilterSet(),
		records:   records,
		category:  CategoryAll,
		sortKey:   DefaultSortKey,
		window:    NewWindow(cfg.pageSize),
	}
	p.debouncer = NewDebouncer(cfg.debounce, cfg.scheduler, p.applyDebouncedSearch)

	seed := cfg.seed
	if seed == nil && cfg.navigator != nil {
		loc := cfg.navigator.Location()
		seed = &loc
	}
	if seed != nil {
		p.seed(seed.Query)
	}
	p.lastQuery = EncodeQuery(p.query()).Encode()

	return p
}

// seed applies address parameters to the initial state. It runs once, from
// NewPipeline; the address is never read again afterwards.
func (p *Pipeline) seed(q Query) {
	if c := strings.TrimSpace(q.Category); c != "" && !strings.EqualFold(c, CategoryAll) {
		p.category = strings.ToLower(c)
		p.filters.Add(CategoryFilter(p.category))
	}
	if q.Search != "" {
		p.searchTerm = q.Search
		p.debounced = q.Search
		p.filters.Add(SearchFilter(q.Search))
	}
	p.filtersGen++
}

func (p *Pipeline) query() Query {
	return Query{Category: p.category, Search: p.debounced}
}

// effects are run after the lock is released.
type effects struct {
	navigate *Location
	changed  bool
}

func (p *Pipeline) run(e effects) {
	p.mu.Lock()
	closed, fn := p.closed, p.onChange
	p.mu.Unlock()
	if closed {
		return
	}

	if e.navigate != nil && p.navigator != nil {
		p.navigator.Replace(*e.navigate)
	}
	if e.changed && fn != nil {
		fn()
	}
}

// syncLocked returns the address replacement for the current query, if it changed.
func (p *Pipeline) syncLocked() *Location {
	encoded := EncodeQuery(p.query()).Encode()
	if encoded == p.lastQuery {
		return nil
	}
	p.lastQuery = encoded
	loc := Location{Path: LedgerPath, Query: p.query()}
	return &loc
}

// identityChangedLocked resets pagination after a change to what is shown.
func (p *Pipeline) identityChangedLocked() {
	p.filtersGen++
	p.window.Reset()
}

// SetSearchTerm records typed text. The filter follows after the debounce delay.
func (p *Pipeline) SetSearchTerm(text string) {
	p.mu.Lock()
	if p.closed || text == p.searchTerm {
		p.mu.Unlock()
		return
	}
	p.searchTerm = text
	p.mu.Unlock()

	p.debouncer.Trigger(text)
	p.run(effects{changed: true})
}

// FlushSearch applies a pending search term immediately.
func (p *Pipeline) FlushSearch() {
	p.debouncer.Flush()
}

// SearchPending reports whether typed text is waiting on the debounce delay.
func (p *Pipeline) SearchPending() bool {
	return p.debouncer.Pending()
}

func (p *Pipeline) applyDebouncedSearch(term string) {
	p.mu.Lock()
	if p.closed || term == p.debounced {
		p.mu.Unlock()
		return
	}
	p.debounced = term
	p.filters.RemovePrefix(SearchPrefix)
	if term != "" {
		p.filters.Add(SearchFilter(term))
	}
	p.identityChangedLocked()
	nav := p.syncLocked()
	p.mu.Unlock()

	p.logger.Debug("search applied", "term", term)
	p.run(effects{navigate: nav, changed: true})
}

// ClearSearch empties the search box and drops the search filter at once.
func (p *Pipeline) ClearSearch() {
	p.debouncer.Cancel()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	changed := p.searchTerm != "" || p.debounced != ""
	p.searchTerm = ""
	var nav *Location
	if p.debounced != "" {
		p.debounced = ""
		p.filters.RemovePrefix(SearchPrefix)
		p.identityChangedLocked()
		nav = p.syncLocked()
	}
	p.mu.Unlock()

	p.run(effects{navigate: nav, changed: changed})
}

// SetCategory constrains the view to one category. CategoryAll or an empty
// name removes the constraint.
func (p *Pipeline) SetCategory(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = CategoryAll
	}

	p.mu.Lock()
	if p.closed || name == p.category {
		p.mu.Unlock()
		return
	}
	p.category = name
	p.filters.RemovePrefix(CategoryPrefix)
	if name != CategoryAll {
		p.filters.Add(CategoryFilter(name))
	}
	p.identityChangedLocked()
	nav := p.syncLocked()
	p.mu.Unlock()

	p.logger.Debug("category selected", "category", name)
	p.run(effects{navigate: nav, changed: true})
}

// SetSortKey selects a registered sort.
func (p *Pipeline) SetSortKey(key SortKey) error {
	if _, err := p.registry.Sort(key); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if key == p.sortKey {
		p.mu.Unlock()
		return nil
	}
	p.sortKey = key
	p.window.Reset()
	p.mu.Unlock()

	p.run(effects{changed: true})
	return nil
}

// SetGroupKey selects a registered grouping, or GroupNone for a flat list.
func (p *Pipeline) SetGroupKey(key GroupKey) error {
	if key != GroupNone {
		if _, err := p.registry.Group(key); err != nil {
			return err
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if key == p.groupKey {
		p.mu.Unlock()
		return nil
	}
	p.groupKey = key
	p.window.Reset()
	p.mu.Unlock()

	p.run(effects{changed: true})
	return nil
}

// LoadMore reveals another page and reports whether the window grew.
func (p *Pipeline) LoadMore() bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	grew := p.window.LoadMore(len(p.sortedLocked()))
	p.mu.Unlock()

	if grew {
		p.run(effects{changed: true})
	}
	return grew
}

// AddFilter installs f, replacing a filter of the same name. Category and
// search filters replace any live filter of the same family and become the
// category or search of the query state.
func (p *Pipeline) AddFilter(f Filter) {
	name := f.Name()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	var nav *Location
	switch {
	case strings.HasPrefix(name, CategoryPrefix):
		p.filters.RemovePrefix(CategoryPrefix)
		p.category = strings.TrimPrefix(name, CategoryPrefix)
		if p.category == "" || p.category == CategoryAll {
			p.category = CategoryAll
		} else {
			p.filters.Add(f)
		}
		nav = p.syncLocked()
	case strings.HasPrefix(name, SearchPrefix):
		p.debouncer.Cancel()
		p.filters.RemovePrefix(SearchPrefix)
		p.searchTerm = strings.TrimPrefix(name, SearchPrefix)
		p.debounced = p.searchTerm
		if p.debounced != "" {
			p.filters.Add(f)
		}
		nav = p.syncLocked()
	default:
		p.filters.Add(f)
	}
	p.identityChangedLocked()
	p.mu.Unlock()

	p.run(effects{navigate: nav, changed: true})
}

// RemoveFilter drops the named filter. Removing the category or search filter
// also clears the matching query state.
func (p *Pipeline) RemoveFilter(name string) bool {
	p.mu.Lock()
	if p.closed || !p.filters.Remove(name) {
		p.mu.Unlock()
		return false
	}
	switch {
	case strings.HasPrefix(name, CategoryPrefix):
		p.category = CategoryAll
	case strings.HasPrefix(name, SearchPrefix):
		p.debouncer.Cancel()
		p.searchTerm = ""
		p.debounced = ""
	}
	p.identityChangedLocked()
	nav := p.syncLocked()
	p.mu.Unlock()

	p.run(effects{navigate: nav, changed: true})
	return true
}

// ClearFilters removes every filter, including category and search.
func (p *Pipeline) ClearFilters() {
	p.debouncer.Cancel()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.filters = NewFilterSet()
	p.category = CategoryAll
	p.searchTerm = ""
	p.debounced = ""
	p.identityChangedLocked()
	nav := p.syncLocked()
	p.mu.Unlock()

	p.run(effects{navigate: nav, changed: true})
}

// SetRecords replaces the ledger snapshot after a refresh. The query state
// and pagination position are kept.
func (p *Pipeline) SetRecords(records []model.Transaction) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.records = records
	p.recordsGen++
	p.mu.Unlock()

	p.logger.Debug("ledger refreshed", "records", len(records))
	p.run(effects{changed: true})
}

// Close cancels pending timers and resets the query state. Later operations
// are ignored.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.onChange = nil
	p.mu.Unlock()

	p.debouncer.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = NewFilterSet()
	p.searchTerm = ""
	p.debounced = ""
	p.category = CategoryAll
	p.sortKey = DefaultSortKey
	p.groupKey = GroupNone
	p.window.Reset()
	p.records = nil
	p.sorted = nil
	p.hasSorted = false
	p.hasView = false
	p.hasCats = false
}

// State returns a snapshot of the query state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		SearchTerm:          p.searchTerm,
		DebouncedSearchTerm: p.debounced,
		Category:            p.category,
		SortKey:             p.sortKey,
		GroupKey:            p.groupKey,
		ActiveFilters:       p.filters.Names(),
		Revealed:            p.window.Revealed,
	}
}

// Query returns the navigable part of the state.
func (p *Pipeline) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query()
}

// ActiveFilters returns the installed filters in install order.
func (p *Pipeline) ActiveFilters() []Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.Filters()
}

// View derives the current view. Results are memoized until an input changes.
func (p *Pipeline) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := viewKey{derivedKey: p.currentDerivedKey(), groupKey: p.groupKey, revealed: p.window.Revealed}
	if p.hasView && key == p.viewKey {
		return p.view
	}

	sorted := p.sortedLocked()
	visible := Visible(p.window, sorted)
	if visible == nil {
		visible = []model.Transaction{}
	}

	v := View{
		VisibleRecords:        visible,
		TotalFilteredCount:    len(sorted),
		HasMore:               p.window.HasMore(len(sorted)),
		Totals:                summarize(sorted),
		AvailableCategories:   p.categoriesLocked(),
		AvailableSortOptions:  p.registry.SortOptions(),
		AvailableGroupOptions: p.registry.GroupOptions(),
	}
	if p.groupKey != GroupNone {
		if strategy, err := p.registry.Group(p.groupKey); err == nil {
			v.Groups = Partition(visible, strategy)
		}
	}

	p.view = v
	p.viewKey = key
	p.hasView = true
	return v
}

func (p *Pipeline) currentDerivedKey() derivedKey {
	return derivedKey{records: p.recordsGen, filters: p.filtersGen, sortKey: p.sortKey}
}

// sortedLocked returns the filtered and sorted ledger.
func (p *Pipeline) sortedLocked() []model.Transaction {
	key := p.currentDerivedKey()
	if p.hasSorted && key == p.sortedKey {
		return p.sorted
	}
	filtered := ApplyFilters(p.records, p.filters)
	strategy, err := p.registry.Sort(p.sortKey)
	if err != nil {
		p.logger.Error("sort strategy missing", "key", p.sortKey)
		p.sorted = slices.Clone(filtered)
	} else {
		p.sorted = Sort(filtered, strategy)
	}
	p.sortedKey = key
	p.hasSorted = true
	return p.sorted
}

// categoriesLocked derives category options from the whole ledger.
func (p *Pipeline) categoriesLocked() []CategoryOption {
	if p.hasCats && p.catGen == p.recordsGen {
		return p.categories
	}
	byKey := make(map[string]int)
	options := make([]CategoryOption, 0)
	for _, tx := range p.records {
		key := tx.CategoryKey()
		if strings.TrimSpace(key) == "" {
			continue
		}
		i, ok := byKey[key]
		if !ok {
			i = len(options)
			byKey[key] = i
			options = append(options, CategoryOption{Key: key, Label: DisplayCategory(tx.Category)})
		}
		options[i].Count++
		if tx.Amount.Valid {
			options[i].Total = options[i].Total.Add(tx.Amount.Decimal)
		}
	}
	slices.SortStableFunc(options, func(a, b CategoryOption) int {
		return p.text.compare(a.Label, b.Label)
	})

	all := CategoryOption{Key: CategoryAll, Label: "All Transactions", Count: len(p.records)}
	all.Total = summarize(p.records).Net

	p.categories = append([]CategoryOption{all}, options...)
	p.catGen = p.recordsGen
	p.hasCats = true
	return p.categories
}

func summarize(records []model.Transaction) Totals {
	var t Totals
	for _, tx := range records {
		if !tx.Amount.Valid {
			continue
		}
		if tx.IsIncome() {
			t.Income = t.Income.Add(tx.Amount.Decimal)
		} else {
			t.Expenses = t.Expenses.Add(tx.Amount.Decimal)
		}
	}
	t.Net = t.Income.Add(t.Expenses)
	return t
}
