// Package source supplies ledger snapshots to the query pipeline: JSON files,
// the bundled fallback dataset, and a refreshable cache in front of any of them.
package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// recordNamespace derives stable IDs for records that arrive without one.
var recordNamespace = uuid.MustParse("5f0c3a52-7a43-4b8e-9d0f-2c1d8e6b9a17")

// wireRecord is the JSON shape of a ledger row. Amount is kept raw so a
// malformed value does not fail the whole document.
type wireRecord struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Name        string          `json:"name,omitempty"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Avatar      string          `json:"avatar,omitempty"`
	Recurring   bool            `json:"recurring,omitempty"`
	IsPaid      bool            `json:"isPaid,omitempty"`
	IsOverdue   bool            `json:"isOverdue,omitempty"`
	DueDay      int             `json:"dueDay,omitempty"`
}

type wireDocument struct {
	Transactions []wireRecord `json:"transactions"`
}

// DecodeSnapshot reads a ledger from either a JSON array of records or an
// object with a "transactions" array.
func DecodeSnapshot(r io.Reader) ([]model.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var rows []wireRecord
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var doc wireDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		rows = doc.Transactions
	} else if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	records := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toModel())
	}
	return records, nil
}

func (w wireRecord) toModel() model.Transaction {
	description := w.Description
	if description == "" {
		description = w.Name
	}
	tx := model.Transaction{
		ID:          w.ID,
		Date:        w.Date,
		Description: description,
		Amount:      parseRawAmount(w.Amount),
		Category:    w.Category,
		AvatarRef:   w.Avatar,
		Recurring:   w.Recurring,
		IsPaid:      w.IsPaid,
		IsOverdue:   w.IsOverdue,
		DueDay:      w.DueDay,
	}
	if tx.ID == "" {
		tx.ID = uuid.NewSHA1(recordNamespace, []byte(tx.GenerateHash())).String()
	}
	return tx
}

func parseRawAmount(raw json.RawMessage) decimal.NullDecimal {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.NullDecimal{}
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.NullDecimal{}
		}
		text = s
	}
	return model.ParseAmount(text)
}

func fromModel(tx model.Transaction) wireRecord {
	amount := json.RawMessage("null")
	if tx.Amount.Valid {
		amount = json.RawMessage(tx.Amount.Decimal.String())
	}
	return wireRecord{
		ID:          tx.ID,
		Date:        tx.Date,
		Description: tx.Description,
		Amount:      amount,
		Category:    tx.Category,
		Avatar:      tx.AvatarRef,
		Recurring:   tx.Recurring,
		IsPaid:      tx.IsPaid,
		IsOverdue:   tx.IsOverdue,
		DueDay:      tx.DueDay,
	}
}

// EncodeSnapshot writes records as an indented JSON array.
func EncodeSnapshot(w io.Writer, records []model.Transaction) error {
	rows := make([]wireRecord, 0, len(records))
	for _, tx := range records {
		rows = append(rows, fromModel(tx))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
