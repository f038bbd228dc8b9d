package ledger

import (
	"cmp"
	"slices"
	"sync"

	"github.com/Veraticus/spice-ledger/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey identifies a sort strategy.
type SortKey string

// Sort keys.
const (
	SortLatest  SortKey = "latest"
	SortOldest  SortKey = "oldest"
	SortAZ      SortKey = "a-z"
	SortZA      SortKey = "z-a"
	SortHighest SortKey = "highest"
	SortLowest  SortKey = "lowest"
)

// DefaultSortKey is the order a fresh ledger view starts with.
const DefaultSortKey = SortLatest

// SortStrategy orders transactions. Compare returns a negative number when a
// sorts before b.
type SortStrategy struct {
	Compare     func(a, b model.Transaction) int
	Key         SortKey
	DisplayName string
}

// SortOption is a selectable sort exposed to the UI.
type SortOption struct {
	Key         SortKey
	DisplayName string
}

// Sort returns a stably sorted copy of records.
func Sort(records []model.Transaction, strategy SortStrategy) []model.Transaction {
	out := slices.Clone(records)
	slices.SortStableFunc(out, strategy.Compare)
	return out
}

// textOrder compares strings with a locale collator. Collators are not safe
// for concurrent use so access is serialized.
type textOrder struct {
	collator *collate.Collator
	mu       sync.Mutex
}

func newTextOrder(tag language.Tag) *textOrder {
	return &textOrder{collator: collate.New(tag, collate.IgnoreCase)}
}

func (o *textOrder) compare(a, b string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.collator.CompareString(a, b)
}

// builtinSorts returns the standard strategies using tag for text order.
func builtinSorts(tag language.Tag) []SortStrategy {
	text := newTextOrder(tag)
	return []SortStrategy{
		{
			Key:         SortLatest,
			DisplayName: "Latest",
			Compare: func(a, b model.Transaction) int {
				return compareDates(a, b, true)
			},
		},
		{
			Key:         SortOldest,
			DisplayName: "Oldest",
			Compare: func(a, b model.Transaction) int {
				return compareDates(a, b, false)
			},
		},
		{
			Key:         SortAZ,
			DisplayName: "A to Z",
			Compare: func(a, b model.Transaction) int {
				return text.compare(a.Description, b.Description)
			},
		},
		{
			Key:         SortZA,
			DisplayName: "Z to A",
			Compare: func(a, b model.Transaction) int {
				return text.compare(b.Description, a.Description)
			},
		},
		{
			Key:         SortHighest,
			DisplayName: "Highest",
			Compare: func(a, b model.Transaction) int {
				return compareAmounts(a, b, true)
			},
		},
		{
			Key:         SortLowest,
			DisplayName: "Lowest",
			Compare: func(a, b model.Transaction) int {
				return compareAmounts(a, b, false)
			},
		},
	}
}

// compareValidity puts malformed values after well-formed ones. It returns
// done=true when at least one side is malformed.
func compareValidity(aOK, bOK bool) (result int, done bool) {
	switch {
	case aOK && bOK:
		return 0, false
	case aOK:
		return -1, true
	case bOK:
		return 1, true
	default:
		return 0, true
	}
}

func compareDates(a, b model.Transaction, descending bool) int {
	at, aOK := a.Timestamp()
	bt, bOK := b.Timestamp()
	if r, done := compareValidity(aOK, bOK); done {
		return r
	}
	if descending {
		return bt.Compare(at)
	}
	return at.Compare(bt)
}

// compareAmounts orders by sign tier first and amount second.
// highest: income before expenses, each tier by amount descending.
// lowest: expenses before income, each tier by amount ascending.
func compareAmounts(a, b model.Transaction, highest bool) int {
	if r, done := compareValidity(a.Amount.Valid, b.Amount.Valid); done {
		return r
	}
	tierA, tierB := incomeTier(a), incomeTier(b)
	if highest {
		if c := cmp.Compare(tierB, tierA); c != 0 {
			return c
		}
		return b.Amount.Decimal.Cmp(a.Amount.Decimal)
	}
	if c := cmp.Compare(tierA, tierB); c != 0 {
		return c
	}
	return a.Amount.Decimal.Cmp(b.Amount.Decimal)
}

func incomeTier(tx model.Transaction) int {
	if tx.IsIncome() {
		return 1
	}
	return 0
}
