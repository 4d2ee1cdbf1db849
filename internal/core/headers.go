package core

import "fmt"

// headerAliases maps each canonical journal field to the raw-header
// spellings accepted for it. The lists cover the major Japanese accounting
// software exports (弥生会計, freee, マネーフォワード) plus English CSV
// exports. Adding a spelling here is a configuration change; ambiguous
// entries are rejected by ValidateAliasTable at startup.
var headerAliases = map[string][]string{
	FieldDate:          {"日付", "年月日", "取引日", "発生日", "Date", "Transaction Date"},
	FieldDebitAccount:  {"借方科目", "借方勘定科目", "借方勘定", "Debit Account"},
	FieldDebitAmount:   {"借方金額", "借方", "Debit Amount"},
	FieldDebitPartner:  {"借方取引先", "借方補助科目", "借方取引先名", "Debit Partner"},
	FieldCreditAccount: {"貸方科目", "貸方勘定科目", "貸方勘定", "Credit Account"},
	FieldCreditAmount:  {"貸方金額", "貸方", "Credit Amount"},
	FieldCreditPartner: {"貸方取引先", "貸方補助科目", "貸方取引先名", "Credit Partner"},
	FieldCreatedAt:     {"作成日", "作成日時", "登録日", "登録日時", "入力日", "入力日時", "仕分日", "仕分日時", "Created At"},
	FieldQuantity:      {"数量", "個数", "Qty", "Quantity"},
}

// ResolveHeaders returns a rename mapping from raw column names to canonical
// field names. A raw name that exactly matches a synonym of a canonical field
// maps to that field; unmatched names are absent from the map and pass
// through unchanged (the normalizer discards them later).
func ResolveHeaders(columns []string) map[string]string {
	rename := make(map[string]string, len(columns))
	for _, col := range columns {
		if _, done := rename[col]; done {
			continue
		}
		for _, field := range CanonicalFields {
			if matchAlias(col, field, headerAliases[field]) {
				rename[col] = field
				break
			}
		}
	}
	return rename
}

// ValidateAliasTable rejects a synonym spelling claimed by more than one
// canonical field. Run once at startup; a failure is a configuration bug,
// not a data problem.
func ValidateAliasTable() error {
	seen := make(map[string]string)
	for _, field := range CanonicalFields {
		for _, alias := range headerAliases[field] {
			if prev, dup := seen[alias]; dup {
				return fmt.Errorf("alias %q claimed by both %s and %s", alias, prev, field)
			}
			seen[alias] = field
		}
	}
	return nil
}

// matchAlias reports whether col is an accepted spelling. Canonical names
// match themselves, so resolving an already normalized header is a no-op.
func matchAlias(col string, field string, aliases []string) bool {
	if col == field {
		return true
	}
	for _, a := range aliases {
		if col == a {
			return true
		}
	}
	return false
}
