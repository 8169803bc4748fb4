// Package ofx imports expenses from OFX/QFX bank statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-tracker/internal/model"
)

// amountPrecision is the number of decimal places kept from OFX amounts.
const amountPrecision = 4

// Parser turns OFX/QFX bank and credit card statements into expenses.
type Parser struct {
	// DefaultCategory is assigned to every expense; OFX carries no categories.
	DefaultCategory string
}

// NewParser creates a new OFX parser that files expenses under category.
func NewParser(category string) *Parser {
	return &Parser{DefaultCategory: category}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	// Match opening tags that are missing their closing bracket
	// Pattern: <TAGNAME at end of line (no > and no content after tag)
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns its debits as expenses.
// Credits are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Expense, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var expenses []model.Expense
	var bankStmts, ccStmts, credits int

	// Process bank messages
	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			got, skipped := p.convertTransactions(stmt.BankTranList.Transactions)
			expenses = append(expenses, got...)
			credits += skipped
		}
	}

	// Process credit card messages
	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			got, skipped := p.convertTransactions(stmt.BankTranList.Transactions)
			expenses = append(expenses, got...)
			credits += skipped
		}
	}

	slog.Info("Parsed OFX file",
		"expenses", len(expenses),
		"credits_skipped", credits,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return expenses, nil
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	// Read and preprocess the content
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// convertTransactions keeps the debits, returning them with the number of
// skipped credits.
func (p *Parser) convertTransactions(txns []ofxgo.Transaction) ([]model.Expense, int) {
	expenses := make([]model.Expense, 0, len(txns))
	credits := 0

	for _, ofxTx := range txns {
		// OFX uses negative amounts for debits
		if ofxTx.TrnAmt.Sign() >= 0 {
			credits++
			continue
		}
		expense, err := p.convertTransaction(ofxTx)
		if err != nil {
			slog.Warn("Skipping OFX transaction", "fitid", ofxTx.FiTID, "error", err)
			continue
		}
		expenses = append(expenses, expense)
	}

	return expenses, credits
}

// convertTransaction converts an OFX debit to an expense.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Expense, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(amountPrecision))
	if err != nil {
		return model.Expense{}, fmt.Errorf("invalid amount %s: %w", ofxTx.TrnAmt.String(), err)
	}

	return model.Expense{
		Date:        model.TruncateDate(ofxTx.DtPosted.Time),
		Amount:      amount.Abs(),
		Category:    p.category(),
		Description: p.extractMerchantName(ofxTx),
	}, nil
}

func (p *Parser) category() string {
	if c := strings.TrimSpace(p.DefaultCategory); c != "" {
		return c
	}
	return model.DefaultCategory
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	// Fall back to NAME field
	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		// Sometimes MEMO has better merchant info
		name = string(tx.Memo)
	}

	// Basic cleanup
	name = strings.TrimSpace(name)

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)

	// Bank accounts
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if stmt.BankAcctFrom.AcctID != "" {
				accountMap[string(stmt.BankAcctFrom.AcctID)] = true
			}
		}
	}

	// Credit card accounts
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			if stmt.CCAcctFrom.AcctID != "" {
				accountMap[string(stmt.CCAcctFrom.AcctID)] = true
			}
		}
	}

	// Convert to slice
	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	slices.Sort(accounts)

	return accounts, nil
}
