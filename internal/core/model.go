package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severity classifies both validation check outcomes and diagnostic findings.
type Severity string

const (
	SeverityRed   Severity = "red"   // concerning
	SeverityBlue  Severity = "blue"  // healthy
	SeverityGrey  Severity = "grey"  // indeterminate, insufficient data
	SeverityGreen Severity = "green" // validation passed
	SeverityInfo  Severity = "black" // informational note
)

// Canonical journal field names, in the fixed column order every normalized
// table carries regardless of source shape.
const (
	FieldDate          = "date"
	FieldDebitAccount  = "debit_account"
	FieldDebitAmount   = "debit_amount"
	FieldDebitPartner  = "debit_partner"
	FieldCreditAccount = "credit_account"
	FieldCreditAmount  = "credit_amount"
	FieldCreditPartner = "credit_partner"
	FieldCreatedAt     = "created_at"
	FieldQuantity      = "quantity"
)

// CanonicalFields lists the canonical journal columns in output order.
var CanonicalFields = []string{
	FieldDate,
	FieldDebitAccount,
	FieldDebitAmount,
	FieldDebitPartner,
	FieldCreditAccount,
	FieldCreditAmount,
	FieldCreditPartner,
	FieldCreatedAt,
	FieldQuantity,
}

// JournalRecord is one normalized journal row. Fields absent from the source
// are explicit nulls (nil pointers / invalid NullDecimals), never omitted, so
// downstream aggregation can assume a fixed shape.
type JournalRecord struct {
	Date          *time.Time          `json:"date"`
	DebitAccount  string              `json:"debit_account"`
	DebitAmount   decimal.NullDecimal `json:"debit_amount"`
	DebitPartner  string              `json:"debit_partner"`
	CreditAccount string              `json:"credit_account"`
	CreditAmount  decimal.NullDecimal `json:"credit_amount"`
	CreditPartner string              `json:"credit_partner"`
	CreatedAt     *time.Time          `json:"created_at"`
	Quantity      decimal.NullDecimal `json:"quantity"`
}

// JournalTable is the normalized journal. Records are immutable after
// normalization; aggregation reads them, nothing mutates them.
type JournalTable struct {
	Records []JournalRecord
}

// BalanceSummary is the period-end cash position extracted from the balance
// sheet. Present is false when no balance sheet was supplied (all amounts zero).
type BalanceSummary struct {
	Cash            decimal.Decimal `json:"period_end_cash"`
	OrdinaryDeposit decimal.Decimal `json:"period_end_ordinary_deposit"`
	CurrentDeposit  decimal.Decimal `json:"period_end_current_deposit"`
	TermDeposit     decimal.Decimal `json:"period_end_term_deposit"`
	CashTotal       decimal.Decimal `json:"period_end_cash_total"`
	Present         bool            `json:"present"`
}

// CheckResult is the outcome of one structural validation gate.
type CheckResult struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	OK       bool     `json:"ok"`
}

// Finding is one row of diagnostic output. Findings are emitted in a fixed
// order (category then item) and are immutable once built.
type Finding struct {
	Category string   `json:"category"`
	Item     string   `json:"item"`
	Result   string   `json:"result"`
	Comment  string   `json:"comment"`
	Severity Severity `json:"severity"`
}

// Diagnostic rule item names. These double as lookup keys for the
// root-cause explanation map in the report assembler.
const (
	ItemCashThinness       = "現金薄さ"
	ItemPayablesTrend      = "買掛・未払残高"
	ItemEntryDelay         = "仕訳入力遅延"
	ItemMarginVolatility   = "粗利率ブレ"
	ItemCollectionDays     = "入金サイト延伸"
	ItemNewPartners        = "新規取引先数"
	ItemNewPartnerRetain   = "新規継続率"
	ItemMarginTrend        = "粗利率トレンド"
	ItemSalesConcentration = "上位3社売上集中度"
	ItemCostConcentration  = "上位3社仕入集中度"
	ItemUnitPriceInflation = "単価上昇率"
)

// Finding categories, in report order.
const (
	CategoryCashFlow = "① 資金繰り"
	CategoryQuality  = "② 会計品質"
	CategoryRevenue  = "③ 売上構造"
	CategoryProcure  = "④ 仕入コスト"
)
