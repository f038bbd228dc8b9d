package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single ledger entry. Values are never mutated once loaded.
type Transaction struct {
	Amount      decimal.NullDecimal // non-negative is income
	ID          string
	Date        string // ISO-8601 date or date-time, kept raw
	Description string // payee or payer name
	Category    string
	AvatarRef   string

	// Optional metadata, only read by filters built on it.
	Recurring bool
	IsPaid    bool
	IsOverdue bool
	DueDay    int
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate parses an ISO-8601 date or date-time string.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount parses a signed decimal. A malformed value yields an invalid NullDecimal.
func ParseAmount(raw string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Timestamp returns the parsed date and false when the date is malformed.
func (t Transaction) Timestamp() (time.Time, bool) {
	return ParseDate(t.Date)
}

// IsIncome reports whether the amount is valid and non-negative.
func (t Transaction) IsIncome() bool {
	return t.Amount.Valid && t.Amount.Decimal.Sign() >= 0
}

// AmountString is the decimal string form used for text search.
func (t Transaction) AmountString() string {
	if !t.Amount.Valid {
		return ""
	}
	return t.Amount.Decimal.String()
}

// CategoryKey is the case-folded category used for matching.
func (t Transaction) CategoryKey() string {
	return strings.ToLower(t.Category)
}

// GenerateHash creates a hash for duplicate detection on import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s", t.Date, t.AmountString(), t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
