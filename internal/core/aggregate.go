package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account classification keyword lists. Substring match against either
// account side, so 売上 also matches 売上高. The lists are not disjoint:
// a record can carry more than one category at once, and every aggregation
// evaluates its category independently.
var (
	salesKeywords       = []string{"売上", "売上高"}
	cogsKeywords        = []string{"仕入", "売上原価", "外注費"}
	payablesKeywords    = []string{"買掛金", "未払金", "未払費用"}
	receivablesKeywords = []string{"売掛金"}
)

// Classification tags one record with the account categories it matches.
type Classification struct {
	Sales       bool
	COGS        bool
	Payables    bool
	Receivables bool
}

// ClassifiedRecord pairs a journal record with its category tags and the
// conventionally-attributed amounts: sales reads the credit side, cost of
// goods the debit side, payables the credit side.
type ClassifiedRecord struct {
	JournalRecord
	Class       Classification
	SalesAmt    decimal.Decimal
	COGSAmt     decimal.Decimal
	PayablesAmt decimal.Decimal
}

// YearMonth is one calendar month bucket key.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

func (ym YearMonth) String() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthlyAggregate is the per-month sum of classified amounts plus the
// derived gross margin. Margin is zero, not NaN or infinite, when the
// month has no sales.
type MonthlyAggregate struct {
	Month    YearMonth
	Sales    decimal.Decimal
	COGS     decimal.Decimal
	Payables decimal.Decimal
	Margin   decimal.Decimal
}

// Aggregates is everything the rule engine consumes: the dated, classified
// record set, the chronological monthly buckets, and the current/prior-year
// split.
type Aggregates struct {
	Records []ClassifiedRecord // records with a parseable date, source order
	Monthly []MonthlyAggregate // chronological

	MinDate     time.Time
	MaxDate     time.Time
	MonthsCount int // calendar months covered, span + 1

	AnnualSales decimal.Decimal // total sales across the whole table

	// Current holds records dated after MaxDate minus one year; Prior holds
	// the rest. When fewer than 13 months are covered everything is Current
	// and Prior is empty; year-over-year rules detect that and go grey.
	Current []ClassifiedRecord
	Prior   []ClassifiedRecord
}

// Classify tags one record. Exported for the prospecting consumer, which
// reuses the sales classification.
func Classify(rec *JournalRecord) Classification {
	return Classification{
		Sales:       matchesAny(rec, salesKeywords),
		COGS:        matchesAny(rec, cogsKeywords),
		Payables:    matchesAny(rec, payablesKeywords),
		Receivables: matchesAny(rec, receivablesKeywords),
	}
}

func matchesAny(rec *JournalRecord, keywords []string) bool {
	return containsAny(rec.DebitAccount, keywords) || containsAny(rec.CreditAccount, keywords)
}

func containsAny(account string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(account, kw) {
			return true
		}
	}
	return false
}

// Aggregate runs the single classification pass over the normalized journal
// and builds the monthly buckets and the current/prior split. Records
// without a parseable date are dropped here.
func Aggregate(journal *JournalTable) *Aggregates {
	agg := &Aggregates{}

	buckets := make(map[YearMonth]*MonthlyAggregate)
	for i := range journal.Records {
		rec := &journal.Records[i]
		if rec.Date == nil {
			continue
		}
		class := Classify(rec)
		cr := ClassifiedRecord{JournalRecord: *rec, Class: class}
		if class.Sales {
			cr.SalesAmt = amountOrZero(rec.CreditAmount)
		}
		if class.COGS {
			cr.COGSAmt = amountOrZero(rec.DebitAmount)
		}
		if class.Payables {
			cr.PayablesAmt = amountOrZero(rec.CreditAmount)
		}
		agg.Records = append(agg.Records, cr)

		if agg.MinDate.IsZero() || rec.Date.Before(agg.MinDate) {
			agg.MinDate = *rec.Date
		}
		if rec.Date.After(agg.MaxDate) {
			agg.MaxDate = *rec.Date
		}

		ym := YearMonth{Year: rec.Date.Year(), Month: rec.Date.Month()}
		b, ok := buckets[ym]
		if !ok {
			b = &MonthlyAggregate{Month: ym}
			buckets[ym] = b
		}
		b.Sales = b.Sales.Add(cr.SalesAmt)
		b.COGS = b.COGS.Add(cr.COGSAmt)
		b.Payables = b.Payables.Add(cr.PayablesAmt)
	}

	if len(agg.Records) == 0 {
		return agg
	}

	for _, b := range buckets {
		if !b.Sales.IsZero() {
			b.Margin = b.Sales.Sub(b.COGS).Div(b.Sales)
		}
		agg.Monthly = append(agg.Monthly, *b)
		agg.AnnualSales = agg.AnnualSales.Add(b.Sales)
	}
	sort.Slice(agg.Monthly, func(i, j int) bool {
		return agg.Monthly[i].Month.Before(agg.Monthly[j].Month)
	})

	agg.MonthsCount = (agg.MaxDate.Year()-agg.MinDate.Year())*12 +
		int(agg.MaxDate.Month()) - int(agg.MinDate.Month()) + 1

	if agg.MonthsCount >= 13 {
		boundary := agg.MaxDate.AddDate(-1, 0, 0)
		for _, cr := range agg.Records {
			if cr.Date.After(boundary) {
				agg.Current = append(agg.Current, cr)
			} else {
				agg.Prior = append(agg.Prior, cr)
			}
		}
	} else {
		agg.Current = agg.Records
	}

	return agg
}

func amountOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
