package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		want  time.Time
		name  string
		input string
		ok    bool
	}{
		{name: "date only", input: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "rfc3339", input: "2024-03-15T10:30:00Z", want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "fractional seconds", input: "2024-08-19T14:23:11.000Z", want: time.Date(2024, 8, 19, 14, 23, 11, 0, time.UTC), ok: true},
		{name: "no zone", input: "2024-03-15T10:30:00", want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), ok: true},
		{name: "surrounding space", input: " 2024-03-15 ", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "yesterday", ok: false},
		{name: "impossible date", input: "2024-02-31", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	valid := ParseAmount("-12.50")
	require.True(t, valid.Valid)
	assert.Equal(t, "-12.5", valid.Decimal.String())

	assert.False(t, ParseAmount("twelve").Valid)
	assert.False(t, ParseAmount("").Valid)
}

func TestTransaction_Helpers(t *testing.T) {
	income := Transaction{Amount: ParseAmount("0"), Category: "Bills"}
	expense := Transaction{Amount: ParseAmount("-3.10")}
	broken := Transaction{Amount: ParseAmount("n/a"), Date: "soon"}

	assert.True(t, income.IsIncome())
	assert.False(t, expense.IsIncome())
	assert.False(t, broken.IsIncome())

	assert.Equal(t, "0", income.AmountString())
	assert.Equal(t, "-3.1", expense.AmountString())
	assert.Empty(t, broken.AmountString())

	assert.Equal(t, "bills", income.CategoryKey())

	_, ok := broken.Timestamp()
	assert.False(t, ok)
}

func TestTransaction_GenerateHash(t *testing.T) {
	a := Transaction{Date: "2024-01-01", Description: "Coffee", Amount: ParseAmount("-3.50")}
	b := a
	b.ID = "different-id"
	c := a
	c.Description = "Tea"

	assert.Equal(t, a.GenerateHash(), b.GenerateHash())
	assert.NotEqual(t, a.GenerateHash(), c.GenerateHash())
	assert.Len(t, a.GenerateHash(), 64)
}
