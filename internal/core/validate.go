package core

import (
	"fmt"
	"strings"
)

// Validation gate messages. Surfaced to the user verbatim, so they stay in
// the product's language.
const (
	// MsgJournalDecodeFailed and MsgBalanceSheetDecodeFailed are reported by
	// the caller when no configured encoding decodes the uploaded bytes.
	MsgJournalDecodeFailed      = "仕訳帳の読み込みに失敗しました（文字コードエラー）"
	MsgBalanceSheetDecodeFailed = "貸借対照表の読み込みに失敗しました（文字コードエラー）"

	msgJournalHeaderMissing  = "仕訳帳のヘッダー（1〜2行目）に「借方」「貸方」が含まれていません"
	msgJournalNoDateColumn   = "仕訳帳に「取引日」という名称の列が見つかりません"
	msgJournalNoValidDates   = "仕訳帳の「取引日」列に有効な日付データが見つかりませんでした"
	msgJournalOK             = "仕訳帳は正常です。処理を続けます"
	msgBalanceSheetOmitted   = "貸借対照表は無しで分析を開始します"
	msgBalanceSheetOK        = "貸借対照表は正常です。分析を開始します"
	msgBalanceSheetNoAccount = "貸借対照表には少なくとも、「現金」「普通預金」「当座預金」「定期預金」のいずれかが含まれている必要があります"
)

// CheckJournal runs the structural gates against the raw journal table
// (row 0 is the unresolved header). Gates run in order and the first failure
// short-circuits the rest; the returned slice carries every outcome produced.
func CheckJournal(rows [][]string) []CheckResult {
	// Gate 1: the first two raw rows, flattened, must mention both the
	// debit and credit markers. This runs pre-alias-resolution so that a
	// journal from an unknown export still gets a meaningful error.
	head := flattenCells(rows, 2)
	if !strings.Contains(head, "借方") || !strings.Contains(head, "貸方") {
		return []CheckResult{{Message: msgJournalHeaderMissing, Severity: SeverityRed}}
	}

	// Gate 2: temporal range on the transaction-date column.
	if len(rows) == 0 {
		return []CheckResult{{Message: msgJournalNoDateColumn, Severity: SeverityRed}}
	}
	dateCol := -1
	for i, col := range rows[0] {
		if strings.Contains(col, "取引日") {
			dateCol = i
			break
		}
	}
	if dateCol == -1 {
		return []CheckResult{{Message: msgJournalNoDateColumn, Severity: SeverityRed}}
	}

	var minDate, maxDate *int // encoded year*12+month for span arithmetic
	valid := 0
	for _, row := range rows[1:] {
		if dateCol >= len(row) {
			continue
		}
		t := ParseDate(row[dateCol])
		if t == nil {
			continue
		}
		valid++
		ym := t.Year()*12 + int(t.Month())
		if minDate == nil || ym < *minDate {
			v := ym
			minDate = &v
		}
		if maxDate == nil || ym > *maxDate {
			v := ym
			maxDate = &v
		}
	}
	if valid == 0 {
		return []CheckResult{{Message: msgJournalNoValidDates, Severity: SeverityRed}}
	}

	months := *maxDate - *minDate
	if months < 11 || months > 23 {
		return []CheckResult{{
			Message:  fmt.Sprintf("仕訳帳のデータ期間が12ヶ月〜24ヶ月の範囲外です（現在の期間: %dヶ月）", months),
			Severity: SeverityRed,
		}}
	}
	return []CheckResult{{Message: msgJournalOK, Severity: SeverityGreen, OK: true}}
}

// CheckBalanceSheet validates the optional balance-sheet table. A nil table
// is not an error: the run proceeds without one, and the returned note says
// so. A supplied table must mention at least one cash/deposit account name.
func CheckBalanceSheet(rows [][]string) CheckResult {
	if rows == nil {
		return CheckResult{Message: msgBalanceSheetOmitted, Severity: SeverityInfo, OK: true}
	}
	all := flattenCells(rows, len(rows))
	if strings.Contains(all, "現金") || strings.Contains(all, "預金") {
		return CheckResult{Message: msgBalanceSheetOK, Severity: SeverityGreen, OK: true}
	}
	return CheckResult{Message: msgBalanceSheetNoAccount, Severity: SeverityRed}
}

// CheckFiles aggregates all gates. Processing stops at the first failed
// outcome; everything accumulated so far is returned for display.
func CheckFiles(journal [][]string, balanceSheet [][]string) []CheckResult {
	results := CheckJournal(journal)
	for _, r := range results {
		if !r.OK {
			return results
		}
	}
	return append(results, CheckBalanceSheet(balanceSheet))
}

// flattenCells joins the first n rows' cells into one string blob for
// keyword scans.
func flattenCells(rows [][]string, n int) string {
	var b strings.Builder
	for i, row := range rows {
		if i >= n {
			break
		}
		for _, cell := range row {
			b.WriteString(cell)
		}
	}
	return b.String()
}
