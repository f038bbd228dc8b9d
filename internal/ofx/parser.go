// Package ofx imports OFX/QFX bank and credit card statements into ledger records.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when the statement gives no hint.
const DefaultCategory = "General"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)

	// fitidNamespace derives IDs for rows without a FITID.
	fitidNamespace = uuid.MustParse("b7e1c0a4-2f6d-4f0e-8a55-91d3c2e7f104")
)

// categoryByType maps OFX transaction types to ledger categories.
var categoryByType = map[string]string{
	"INT":       "Interest",
	"DIV":       "Income",
	"DIRECTDEP": "Income",
	"FEE":       "Bank Fees",
	"SRVCHG":    "Bank Fees",
	"ATM":       "Cash & ATM",
	"CHECK":     "Checks",
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default().With("component", "ofx")}
}

// preprocessOFX fixes formatting issues that ofxgo rejects: leading blank
// lines, mixed-case SEVERITY values, and SGML tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(ctx context.Context, reader io.Reader) (*ofxgo.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns ledger records. Amounts keep
// the OFX sign convention: debits are negative.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convertTransaction(ofxTx, string(stmt.BankAcctFrom.AcctID)))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convertTransaction(ofxTx, string(stmt.CCAcctFrom.AcctID)))
		}
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// convertTransaction converts an OFX transaction to a ledger record.
func convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	trnType := strings.ToUpper(ofxTx.TrnType.String())

	tx := model.Transaction{
		ID:          string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time.Format(time.DateOnly),
		Description: extractMerchantName(ofxTx),
		Amount:      decimal.NewNullDecimal(decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)),
		Category:    DefaultCategory,
		Recurring:   trnType == "REPEATPMT",
	}
	if category, ok := categoryByType[trnType]; ok {
		tx.Category = category
	}
	if tx.ID == "" {
		tx.ID = uuid.NewSHA1(fitidNamespace, []byte(accountID+":"+tx.GenerateHash())).String()
	}

	return tx
}

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = []string{
	"DEBIT",
	"CREDIT",
	"PURCHASE",
	"PAYMENT",
	"POS TRANSACTION",
	"CARD PURCHASE",
}

// extractMerchantName picks the cleanest payee label: PAYEE, then NAME, then
// MEMO when NAME is a generic word.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && slices.Contains(genericDescriptions, strings.ToUpper(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	var accounts []string
	add := func(id string) {
		if id != "" && !slices.Contains(accounts, id) {
			accounts = append(accounts, id)
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
