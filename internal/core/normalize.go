package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyJournal is returned when the raw journal table has no data rows.
var ErrEmptyJournal = errors.New("journal table has no data rows")

// NormalizeJournal projects a raw journal table (row 0 = header) onto the
// canonical field list. Headers are alias-resolved first; canonical fields
// absent from the source come out as explicit nulls, and source columns
// outside the canonical schema are discarded. Rows with neither a debit nor
// a credit account are dropped.
func NormalizeJournal(rows [][]string) (*JournalTable, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyJournal
	}
	header := rows[0]
	rename := ResolveHeaders(header)

	// Index of each canonical field in the source, -1 when absent.
	// First occurrence wins when an export repeats a column.
	idx := make(map[string]int, len(CanonicalFields))
	for _, f := range CanonicalFields {
		idx[f] = -1
	}
	for i, col := range header {
		field, ok := rename[col]
		if !ok {
			continue
		}
		if idx[field] == -1 {
			idx[field] = i
		}
	}

	cell := func(row []string, field string) string {
		i := idx[field]
		if i == -1 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	table := &JournalTable{Records: make([]JournalRecord, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		rec := JournalRecord{
			Date:          ParseDate(cell(row, FieldDate)),
			DebitAccount:  cell(row, FieldDebitAccount),
			DebitAmount:   ParseAmount(cell(row, FieldDebitAmount)),
			DebitPartner:  cell(row, FieldDebitPartner),
			CreditAccount: cell(row, FieldCreditAccount),
			CreditAmount:  ParseAmount(cell(row, FieldCreditAmount)),
			CreditPartner: cell(row, FieldCreditPartner),
			CreatedAt:     ParseDate(cell(row, FieldCreatedAt)),
			Quantity:      ParseAmount(cell(row, FieldQuantity)),
		}
		if rec.DebitAccount == "" && rec.CreditAccount == "" {
			continue
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// Balance-sheet account keywords, searched in the first three columns.
var balanceAccounts = []struct {
	keyword string
	assign  func(*BalanceSummary, decimal.Decimal)
}{
	{"現金", func(b *BalanceSummary, v decimal.Decimal) { b.Cash = v }},
	{"普通預金", func(b *BalanceSummary, v decimal.Decimal) { b.OrdinaryDeposit = v }},
	{"当座預金", func(b *BalanceSummary, v decimal.Decimal) { b.CurrentDeposit = v }},
	{"定期預金", func(b *BalanceSummary, v decimal.Decimal) { b.TermDeposit = v }},
}

// ExtractBalanceSummary pulls the period-end cash position out of a raw
// balance-sheet table with a two-axis scan: the value column is the
// rightmost column whose cell in the first three rows contains the
// period-end marker 期末; the account rows are found by keyword match in the
// first three columns. Anything unlocatable reads as zero. A nil table, or
// one without a period-end column, yields an absent summary.
func ExtractBalanceSummary(rows [][]string) BalanceSummary {
	var summary BalanceSummary
	if rows == nil {
		return summary
	}

	valueCol := -1
	for r := 0; r < len(rows) && r < 3; r++ {
		for c, cellVal := range rows[r] {
			if strings.Contains(cellVal, "期末") && c > valueCol {
				valueCol = c
			}
		}
	}
	if valueCol == -1 {
		return summary
	}

	for _, account := range balanceAccounts {
		value := decimal.Zero
	rowScan:
		for _, row := range rows {
			for c := 0; c < len(row) && c < 3; c++ {
				if strings.Contains(row[c], account.keyword) {
					if valueCol < len(row) {
						value = ParseAmount(row[valueCol]).Decimal
					}
					break rowScan
				}
			}
		}
		account.assign(&summary, value)
	}

	summary.CashTotal = summary.Cash.
		Add(summary.OrdinaryDeposit).
		Add(summary.CurrentDeposit).
		Add(summary.TermDeposit)
	summary.Present = true
	return summary
}
