package ledger

import (
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func sortBy(t *testing.T, records []model.Transaction, key SortKey) []string {
	t.Helper()
	strategy, err := NewDefaultRegistry(language.English).Sort(key)
	require.NoError(t, err)
	return ids(Sort(records, strategy))
}

func TestSort_HighestLowestTiers(t *testing.T) {
	records := []model.Transaction{
		tx("1", "2024-01-01", "A", "-5", ""),
		tx("2", "2024-01-01", "B", "100", ""),
		tx("3", "2024-01-01", "C", "-500", ""),
		tx("4", "2024-01-01", "D", "20", ""),
	}

	assert.Equal(t, []string{"2", "4", "1", "3"}, sortBy(t, records, SortHighest))
	assert.Equal(t, []string{"3", "1", "4", "2"}, sortBy(t, records, SortLowest))
}

func TestSort_ZeroIsIncomeTier(t *testing.T) {
	records := []model.Transaction{
		tx("neg", "", "", "-1", ""),
		tx("zero", "", "", "0", ""),
		tx("pos", "", "", "1", ""),
	}

	assert.Equal(t, []string{"pos", "zero", "neg"}, sortBy(t, records, SortHighest))
	assert.Equal(t, []string{"neg", "zero", "pos"}, sortBy(t, records, SortLowest))
}

func TestSort_Dates(t *testing.T) {
	records := []model.Transaction{
		tx("mid", "2024-02-01", "", "1", ""),
		tx("bad", "someday", "", "1", ""),
		tx("new", "2024-03-01T09:00:00Z", "", "1", ""),
		tx("old", "2024-01-01", "", "1", ""),
	}

	assert.Equal(t, []string{"new", "mid", "old", "bad"}, sortBy(t, records, SortLatest))
	assert.Equal(t, []string{"old", "mid", "new", "bad"}, sortBy(t, records, SortOldest))
}

func TestSort_Alphabetical(t *testing.T) {
	records := []model.Transaction{
		tx("1", "", "banana", "1", ""),
		tx("2", "", "Apple", "1", ""),
		tx("3", "", "Éclair", "1", ""),
		tx("4", "", "cherry", "1", ""),
	}

	assert.Equal(t, []string{"2", "1", "4", "3"}, sortBy(t, records, SortAZ))
	assert.Equal(t, []string{"3", "4", "1", "2"}, sortBy(t, records, SortZA))
}

func TestSort_StableOnTies(t *testing.T) {
	records := []model.Transaction{
		tx("first", "2024-01-01", "Same", "10", ""),
		tx("second", "2024-01-01", "Same", "10", ""),
		tx("third", "2024-01-01", "Same", "10", ""),
	}

	for _, key := range []SortKey{SortLatest, SortOldest, SortAZ, SortZA, SortHighest, SortLowest} {
		t.Run(string(key), func(t *testing.T) {
			assert.Equal(t, []string{"first", "second", "third"}, sortBy(t, records, key))
		})
	}
}

func TestSort_TiesKeepInputOrderNotID(t *testing.T) {
	records := []model.Transaction{
		tx("c", "2024-01-01", "Same", "10", ""),
		tx("a", "2024-01-01", "Same", "10", ""),
		tx("b", "2024-01-01", "Same", "10", ""),
	}
	registry := NewDefaultRegistry(language.English)

	for _, opt := range registry.SortOptions() {
		t.Run(string(opt.Key), func(t *testing.T) {
			strategy, err := registry.Sort(opt.Key)
			require.NoError(t, err)
			assert.Zero(t, strategy.Compare(records[0], records[1]))
			assert.Equal(t, []string{"c", "a", "b"}, ids(Sort(records, strategy)))
		})
	}
}

func TestSort_TotalOnDistinctKeys(t *testing.T) {
	a := tx("a", "2024-01-01", "Alpha", "-5", "")
	b := tx("b", "2024-01-02", "Beta", "-500", "")
	registry := NewDefaultRegistry(language.English)

	for _, opt := range registry.SortOptions() {
		strategy, err := registry.Sort(opt.Key)
		require.NoError(t, err)
		assert.NotZero(t, strategy.Compare(a, b), opt.Key)
		assert.Equal(t, -strategy.Compare(a, b), strategy.Compare(b, a), opt.Key)
	}
}

func TestSort_MalformedAmountsLast(t *testing.T) {
	records := []model.Transaction{
		tx("bad", "", "", "n/a", ""),
		tx("neg", "", "", "-1", ""),
		tx("pos", "", "", "1", ""),
	}

	assert.Equal(t, []string{"pos", "neg", "bad"}, sortBy(t, records, SortHighest))
	assert.Equal(t, []string{"neg", "pos", "bad"}, sortBy(t, records, SortLowest))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	records := []model.Transaction{
		tx("1", "2024-01-01", "", "1", ""),
		tx("2", "2024-02-01", "", "1", ""),
	}

	sorted := sortBy(t, records, SortLatest)
	assert.Equal(t, []string{"2", "1"}, sorted)
	assert.Equal(t, []string{"1", "2"}, ids(records))
}

func TestRegistry_UnknownKeys(t *testing.T) {
	registry := NewDefaultRegistry(language.English)

	_, err := registry.Sort("sideways")
	require.ErrorIs(t, err, ErrUnknownSortKey)

	_, err = registry.Group("weekday")
	require.ErrorIs(t, err, ErrUnknownGroupKey)

	assert.Len(t, registry.SortOptions(), 6)
	assert.Equal(t, []GroupOption{
		{Key: GroupCategory, DisplayName: "Category"},
		{Key: GroupMonth, DisplayName: "Month"},
		{Key: GroupType, DisplayName: "Type"},
		{Key: GroupRecipient, DisplayName: "Recipient"},
	}, registry.GroupOptions())
}

func TestRegistry_IsolatedPerInstance(t *testing.T) {
	a := NewDefaultRegistry(language.English)
	b := NewDefaultRegistry(language.English)

	a.RegisterSort(SortStrategy{Key: "by-id", DisplayName: "ID", Compare: func(x, y model.Transaction) int {
		return len(x.ID) - len(y.ID)
	}})

	_, err := a.Sort("by-id")
	require.NoError(t, err)
	_, err = b.Sort("by-id")
	require.ErrorIs(t, err, ErrUnknownSortKey)
}
