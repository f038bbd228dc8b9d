package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultStart is the date of the first generated record.
var DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// RecordBuilder assembles ledger records for tests.
type RecordBuilder struct {
	start   time.Time
	records []model.Transaction
}

// NewRecords starts an empty ledger dated from DefaultStart.
func NewRecords() *RecordBuilder {
	return &RecordBuilder{start: DefaultStart}
}

// WithRecord adds one record from raw values. A malformed amount stays invalid.
func (b *RecordBuilder) WithRecord(date, description, category, amount string) *RecordBuilder {
	b.records = append(b.records, model.Transaction{
		ID:          fmt.Sprintf("tx-%02d", len(b.records)),
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      model.ParseAmount(amount),
	})
	return b
}

// WithDaily adds n records a day apart named "Vendor NN". Categories rotate
// through the given names. Every fifth record is 100.00 of income, the rest
// are expenses of -(i+1).
func (b *RecordBuilder) WithDaily(n int, categories ...string) *RecordBuilder {
	for i := 0; i < n; i++ {
		amount := decimal.NewFromInt(int64(-(i + 1)))
		if i%5 == 0 {
			amount = decimal.NewFromInt(100)
		}
		category := ""
		if len(categories) > 0 {
			category = categories[i%len(categories)]
		}
		b.records = append(b.records, model.Transaction{
			ID:          fmt.Sprintf("tx-%02d", len(b.records)),
			Date:        b.start.AddDate(0, 0, i).Format(time.DateOnly),
			Description: fmt.Sprintf("Vendor %02d", i),
			Amount:      decimal.NewNullDecimal(amount),
			Category:    category,
		})
	}
	b.start = b.start.AddDate(0, 0, n)
	return b
}

// Build returns the records.
func (b *RecordBuilder) Build() []model.Transaction {
	return b.records
}
