package ledger

import (
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func partitionBy(t *testing.T, records []model.Transaction, key GroupKey) []Group {
	t.Helper()
	strategy, err := NewDefaultRegistry(language.English).Group(key)
	require.NoError(t, err)
	return Partition(records, strategy)
}

func labels(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}
	return out
}

func groupFixture() []model.Transaction {
	return []model.Transaction{
		tx("1", "2024-01-05", "Tesco", "-20", "groceries"),
		tx("2", "2024-01-20", "Employer", "1000", "INCOME"),
		tx("3", "2024-02-02", "tesco", "-15", "Groceries"),
		tx("4", "2024-02-03", "Tesco", "5", "groceries"),
		tx("5", "bad", "Landlord", "broken", ""),
	}
}

func TestPartition_ByCategory(t *testing.T) {
	groups := partitionBy(t, groupFixture(), GroupCategory)

	assert.Equal(t, []string{"Groceries", "Income", LabelUncategorized}, labels(groups))
	assert.Equal(t, []string{"1", "3", "4"}, ids(groups[0].Records))
	assert.Equal(t, "-30", groups[0].Total.String())
}

func TestPartition_ByMonth(t *testing.T) {
	groups := partitionBy(t, groupFixture(), GroupMonth)

	assert.Equal(t, []string{"January 2024", "February 2024", LabelUnknownDate}, labels(groups))
	assert.Equal(t, []string{"1", "2"}, ids(groups[0].Records))
}

func TestPartition_ByMonthUsesLocaleNames(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want []string
	}{
		{language.German, []string{"Januar 2024", "Februar 2024", LabelUnknownDate}},
		{language.MustParse("fr-CA"), []string{"janvier 2024", "février 2024", LabelUnknownDate}},
		{language.BritishEnglish, []string{"January 2024", "February 2024", LabelUnknownDate}},
		{language.Japanese, []string{"January 2024", "February 2024", LabelUnknownDate}},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			strategy, err := NewDefaultRegistry(tt.tag).Group(GroupMonth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(Partition(groupFixture(), strategy)))
		})
	}
}

func TestPartition_ByType(t *testing.T) {
	records := append(groupFixture(), tx("6", "2024-03-01", "Fee waiver", "0", "bank"))
	groups := partitionBy(t, records, GroupType)

	assert.Equal(t, []string{LabelExpenses, LabelIncome, LabelUnknownAmount}, labels(groups))
	assert.Equal(t, []string{"2", "4", "6"}, ids(groups[1].Records))
}

func TestPartition_ByRecipientIsCaseSensitive(t *testing.T) {
	groups := partitionBy(t, groupFixture(), GroupRecipient)

	assert.Equal(t, []string{"Tesco", "Employer", "tesco", "Landlord"}, labels(groups))
	assert.Equal(t, []string{"1", "4"}, ids(groups[0].Records))
}

func TestPartition_Exhaustive(t *testing.T) {
	records := groupFixture()

	for _, key := range []GroupKey{GroupCategory, GroupMonth, GroupType, GroupRecipient} {
		t.Run(string(key), func(t *testing.T) {
			groups := partitionBy(t, records, key)

			seen := make(map[string]int)
			total := 0
			for _, g := range groups {
				total += len(g.Records)
				for _, r := range g.Records {
					seen[r.ID]++
				}
			}
			assert.Equal(t, len(records), total)
			for _, r := range records {
				assert.Equal(t, 1, seen[r.ID], r.ID)
			}
		})
	}
}

func TestPartition_Empty(t *testing.T) {
	assert.Empty(t, partitionBy(t, nil, GroupCategory))
}

func TestDisplayCategory(t *testing.T) {
	assert.Equal(t, "Bills", DisplayCategory("bILLS"))
	assert.Equal(t, "Éclairs", DisplayCategory("éCLAIRS"))
	assert.Equal(t, "", DisplayCategory(""))
}
