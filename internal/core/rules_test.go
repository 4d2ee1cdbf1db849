package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

func timeMonth(m int) time.Month {
	return time.Month(m)
}

func findByItem(t *testing.T, findings []core.Finding, item string) core.Finding {
	t.Helper()
	for _, f := range findings {
		if f.Item == item {
			return f
		}
	}
	t.Fatalf("no finding for item %q", item)
	return core.Finding{}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func monthly(payablesAndMargins ...core.MonthlyAggregate) []core.MonthlyAggregate {
	return payablesAndMargins
}

// classified sales record: credit partner and attributed sales amount set
// the way Aggregate would.
func mkSales(day, partner, amt string) core.ClassifiedRecord {
	return core.ClassifiedRecord{
		JournalRecord: core.JournalRecord{
			Date:          date(day),
			DebitAccount:  "現金",
			CreditAccount: "売上高",
			CreditAmount:  amount(amt),
			CreditPartner: partner,
		},
		Class:    core.Classification{Sales: true},
		SalesAmt: dec(amt),
	}
}

func mkPurchase(day, partner, amt string) core.ClassifiedRecord {
	return core.ClassifiedRecord{
		JournalRecord: core.JournalRecord{
			Date:          date(day),
			DebitAccount:  "仕入高",
			DebitAmount:   amount(amt),
			DebitPartner:  partner,
			CreditAccount: "買掛金",
			CreditAmount:  amount(amt),
		},
		Class:       core.Classification{COGS: true, Payables: true},
		COGSAmt:     dec(amt),
		PayablesAmt: dec(amt),
	}
}

func TestEvaluateRules_AlwaysElevenFindings(t *testing.T) {
	findings := core.EvaluateRules(&core.Aggregates{}, core.BalanceSummary{})
	if len(findings) != 11 {
		t.Fatalf("got %d findings, want 11", len(findings))
	}
	for _, f := range findings {
		if f.Severity != core.SeverityGrey {
			t.Errorf("%s: severity %s, want grey on empty data", f.Item, f.Severity)
		}
	}
}

func TestRuleCashThinness(t *testing.T) {
	tests := []struct {
		name       string
		cashTotal  string
		present    bool
		sales      string
		wantSev    core.Severity
		wantResult string
	}{
		{"below 3 percent floor", "25000", true, "1000000", core.SeverityRed, "2.5%"},
		{"above floor", "40000", true, "1000000", core.SeverityBlue, "4.0%"},
		{"no balance sheet", "0", false, "1000000", core.SeverityGrey, "なし"},
		{"zero sales", "40000", true, "0", core.SeverityGrey, "なし"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &core.Aggregates{AnnualSales: dec(tt.sales)}
			bs := core.BalanceSummary{CashTotal: dec(tt.cashTotal), Present: tt.present}
			f := findByItem(t, core.EvaluateRules(agg, bs), core.ItemCashThinness)
			if f.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s (%s)", f.Severity, tt.wantSev, f.Comment)
			}
			if f.Result != tt.wantResult {
				t.Errorf("result = %q, want %q", f.Result, tt.wantResult)
			}
		})
	}
}

func TestRulePayablesTrend(t *testing.T) {
	bucket := func(mo int, payables string) core.MonthlyAggregate {
		return core.MonthlyAggregate{
			Month:    core.YearMonth{Year: 2023, Month: timeMonth(mo)},
			Payables: dec(payables),
		}
	}
	tests := []struct {
		name    string
		months  []core.MonthlyAggregate
		wantSev core.Severity
		want    string
	}{
		{"three consecutive increases", monthly(bucket(1, "100"), bucket(2, "150"), bucket(3, "200")), core.SeverityRed, "確認"},
		{"no monotonic increase", monthly(bucket(1, "150"), bucket(2, "100"), bucket(3, "200")), core.SeverityBlue, "安定"},
		{"only last three buckets count", monthly(bucket(1, "900"), bucket(2, "100"), bucket(3, "150"), bucket(4, "200")), core.SeverityRed, "確認"},
		{"fewer than three months", monthly(bucket(1, "100"), bucket(2, "150")), core.SeverityGrey, "なし"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &core.Aggregates{Monthly: tt.months}
			f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemPayablesTrend)
			if f.Severity != tt.wantSev || f.Result != tt.want {
				t.Errorf("got %s %q, want %s %q", f.Severity, f.Result, tt.wantSev, tt.want)
			}
		})
	}
}

func TestRuleEntryDelay(t *testing.T) {
	entry := func(day, created string) core.ClassifiedRecord {
		rec := mkSales(day, "A社", "100")
		if created != "" {
			rec.CreatedAt = date(created)
		}
		return rec
	}

	t.Run("no created_at column", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{entry("2023-01-01", "")}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemEntryDelay)
		if f.Severity != core.SeverityGrey {
			t.Errorf("severity = %s, want grey", f.Severity)
		}
	})

	t.Run("20 percent delayed is red", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{
			entry("2023-01-01", "2023-01-20"), // 19 days late
			entry("2023-01-02", "2023-01-02"),
			entry("2023-01-03", "2023-01-03"),
			entry("2023-01-04", "2023-01-04"),
			entry("2023-01-05", "2023-01-05"),
		}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemEntryDelay)
		if f.Severity != core.SeverityRed || f.Result != "20.0%" {
			t.Errorf("got %s %q, want red 20.0%%", f.Severity, f.Result)
		}
	})

	t.Run("below threshold is blue", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{
			entry("2023-01-01", "2023-01-20"),
			entry("2023-01-02", "2023-01-02"),
			entry("2023-01-03", "2023-01-03"),
			entry("2023-01-04", "2023-01-04"),
			entry("2023-01-05", "2023-01-05"),
			entry("2023-01-06", "2023-01-06"),
		}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemEntryDelay)
		if f.Severity != core.SeverityBlue || f.Result != "16.7%" {
			t.Errorf("got %s %q, want blue 16.7%%", f.Severity, f.Result)
		}
	})

	t.Run("15 days exactly is on time", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{
			entry("2023-01-01", "2023-01-16"),
		}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemEntryDelay)
		if f.Result != "0.0%" {
			t.Errorf("result = %q, want 0.0%% for exactly 15 days", f.Result)
		}
	})
}

func TestRuleMarginVolatility(t *testing.T) {
	bucket := func(mo int, margin string) core.MonthlyAggregate {
		return core.MonthlyAggregate{
			Month:  core.YearMonth{Year: 2023, Month: timeMonth(mo)},
			Margin: dec(margin),
		}
	}
	tests := []struct {
		name    string
		months  []core.MonthlyAggregate
		wantSev core.Severity
	}{
		{"swing within 0.10", monthly(bucket(1, "0.30"), bucket(2, "0.38"), bucket(3, "0.30")), core.SeverityBlue},
		{"swing above 0.10", monthly(bucket(1, "0.30"), bucket(2, "0.45"), bucket(3, "0.30")), core.SeverityRed},
		{"exactly 0.10 is tolerated", monthly(bucket(1, "0.30"), bucket(2, "0.40")), core.SeverityBlue},
		{"single month", monthly(bucket(1, "0.30")), core.SeverityGrey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &core.Aggregates{Monthly: tt.months}
			f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemMarginVolatility)
			if f.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", f.Severity, tt.wantSev)
			}
		})
	}
}

func TestRuleCollectionDays(t *testing.T) {
	ar := func(day, amt string) core.ClassifiedRecord {
		return core.ClassifiedRecord{
			JournalRecord: core.JournalRecord{
				Date:         date(day),
				DebitAccount: "売掛金",
				DebitAmount:  amount(amt),
			},
			Class: core.Classification{Receivables: true},
		}
	}

	t.Run("single year is grey", func(t *testing.T) {
		agg := &core.Aggregates{MonthsCount: 12}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemCollectionDays)
		if f.Severity != core.SeverityGrey {
			t.Errorf("severity = %s, want grey", f.Severity)
		}
	})

	t.Run("lengthening collection period is red", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Current:     []core.ClassifiedRecord{mkSales("2023-06-01", "A社", "100"), ar("2023-06-02", "20")},
			Prior:       []core.ClassifiedRecord{mkSales("2022-06-01", "A社", "100"), ar("2022-06-02", "10")},
		}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemCollectionDays)
		// (20/100 - 10/100) * 365 = +36.5 days
		if f.Severity != core.SeverityRed || f.Result != "+36.5日" {
			t.Errorf("got %s %q, want red +36.5日", f.Severity, f.Result)
		}
	})

	t.Run("stable collection period is blue", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Current:     []core.ClassifiedRecord{mkSales("2023-06-01", "A社", "100"), ar("2023-06-02", "10")},
			Prior:       []core.ClassifiedRecord{mkSales("2022-06-01", "A社", "100"), ar("2022-06-02", "10")},
		}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemCollectionDays)
		if f.Severity != core.SeverityBlue || f.Result != "+0.0日" {
			t.Errorf("got %s %q, want blue +0.0日", f.Severity, f.Result)
		}
	})
}

func TestRuleNewPartnersAndRetention(t *testing.T) {
	t.Run("one of four new partners retained is blue", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Current: []core.ClassifiedRecord{
				mkSales("2023-05-01", "旧社", "100"),
				mkSales("2023-05-10", "新A", "100"),
				mkSales("2023-06-24", "新A", "100"), // 45 days later, retained
				mkSales("2023-05-11", "新B", "100"),
				mkSales("2023-05-12", "新C", "100"),
				mkSales("2023-05-13", "新D", "100"),
			},
			Prior: []core.ClassifiedRecord{mkSales("2022-05-01", "旧社", "100")},
		}
		findings := core.EvaluateRules(agg, core.BalanceSummary{})

		np := findByItem(t, findings, core.ItemNewPartners)
		if np.Severity != core.SeverityBlue || np.Result != "4社" {
			t.Errorf("new partners: got %s %q, want blue 4社", np.Severity, np.Result)
		}
		ret := findByItem(t, findings, core.ItemNewPartnerRetain)
		if ret.Severity != core.SeverityBlue || ret.Result != "25.0%" {
			t.Errorf("retention: got %s %q, want blue 25.0%%", ret.Severity, ret.Result)
		}
	})

	t.Run("no retained partners is red", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Current: []core.ClassifiedRecord{
				mkSales("2023-05-10", "新A", "100"),
				mkSales("2023-05-11", "新B", "100"),
				mkSales("2023-05-12", "新C", "100"),
				mkSales("2023-05-13", "新D", "100"),
				mkSales("2023-05-14", "新E", "100"),
			},
			Prior: []core.ClassifiedRecord{mkSales("2022-05-01", "旧社", "100")},
		}
		findings := core.EvaluateRules(agg, core.BalanceSummary{})
		ret := findByItem(t, findings, core.ItemNewPartnerRetain)
		if ret.Severity != core.SeverityRed || ret.Result != "0.0%" {
			t.Errorf("retention: got %s %q, want red 0.0%%", ret.Severity, ret.Result)
		}
	})

	t.Run("second transaction beyond 90 days does not count", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Current: []core.ClassifiedRecord{
				mkSales("2023-01-10", "新A", "100"),
				mkSales("2023-05-10", "新A", "100"), // 120 days later
			},
			Prior: []core.ClassifiedRecord{mkSales("2022-05-01", "旧社", "100")},
		}
		findings := core.EvaluateRules(agg, core.BalanceSummary{})
		ret := findByItem(t, findings, core.ItemNewPartnerRetain)
		if ret.Severity != core.SeverityRed || ret.Result != "0.0%" {
			t.Errorf("retention: got %s %q, want red 0.0%%", ret.Severity, ret.Result)
		}
	})

	t.Run("zero new partners is red", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Current:     []core.ClassifiedRecord{mkSales("2023-05-01", "旧社", "100")},
			Prior:       []core.ClassifiedRecord{mkSales("2022-05-01", "旧社", "100")},
		}
		findings := core.EvaluateRules(agg, core.BalanceSummary{})
		np := findByItem(t, findings, core.ItemNewPartners)
		if np.Severity != core.SeverityRed || np.Result != "0社" {
			t.Errorf("new partners: got %s %q, want red 0社", np.Severity, np.Result)
		}
	})
}

func TestRuleMarginTrend(t *testing.T) {
	bucket := func(mo int, margin string) core.MonthlyAggregate {
		return core.MonthlyAggregate{
			Month:  core.YearMonth{Year: 2023, Month: timeMonth(mo)},
			Margin: dec(margin),
		}
	}
	tests := []struct {
		name    string
		months  []core.MonthlyAggregate
		wantSev core.Severity
	}{
		{"three consecutive declines", monthly(bucket(1, "0.5"), bucket(2, "0.4"), bucket(3, "0.3")), core.SeverityRed},
		{"flat then decline", monthly(bucket(1, "0.4"), bucket(2, "0.4"), bucket(3, "0.3")), core.SeverityBlue},
		{"too few months", monthly(bucket(1, "0.5"), bucket(2, "0.4")), core.SeverityGrey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &core.Aggregates{Monthly: tt.months}
			f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemMarginTrend)
			if f.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", f.Severity, tt.wantSev)
			}
		})
	}
}

func TestRuleSalesConcentration(t *testing.T) {
	t.Run("four partners concentrate top three", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{
			mkSales("2023-01-01", "A社", "50"),
			mkSales("2023-01-02", "B社", "20"),
			mkSales("2023-01-03", "C社", "10"),
			mkSales("2023-01-04", "D社", "5"),
		}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemSalesConcentration)
		// top 3 = 80 of 85 total
		if f.Severity != core.SeverityRed || f.Result != "94.1%" {
			t.Errorf("got %s %q, want red 94.1%%", f.Severity, f.Result)
		}
	})

	t.Run("spread across six partners is blue", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{
			mkSales("2023-01-01", "A社", "10"),
			mkSales("2023-01-02", "B社", "10"),
			mkSales("2023-01-03", "C社", "10"),
			mkSales("2023-01-04", "D社", "10"),
			mkSales("2023-01-05", "E社", "10"),
			mkSales("2023-01-06", "F社", "10"),
		}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemSalesConcentration)
		if f.Severity != core.SeverityBlue || f.Result != "50.0%" {
			t.Errorf("got %s %q, want blue 50.0%%", f.Severity, f.Result)
		}
	})

	t.Run("no partner data is grey", func(t *testing.T) {
		agg := &core.Aggregates{Records: []core.ClassifiedRecord{
			mkSales("2023-01-01", "", "100"),
		}}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemSalesConcentration)
		if f.Severity != core.SeverityGrey {
			t.Errorf("severity = %s, want grey", f.Severity)
		}
	})
}

func TestRuleCostConcentration(t *testing.T) {
	agg := &core.Aggregates{Records: []core.ClassifiedRecord{
		mkPurchase("2023-01-01", "X社", "70"),
		mkPurchase("2023-01-02", "Y社", "20"),
		mkPurchase("2023-01-03", "Z社", "10"),
	}}
	f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemCostConcentration)
	if f.Severity != core.SeverityRed || f.Result != "100.0%" {
		t.Errorf("got %s %q, want red 100.0%%", f.Severity, f.Result)
	}
}

func TestRuleUnitPriceInflation(t *testing.T) {
	priced := func(day, partner, amt, qty string) core.ClassifiedRecord {
		rec := mkPurchase(day, partner, amt)
		rec.Quantity = amount(qty)
		return rec
	}

	t.Run("no quantity column is grey", func(t *testing.T) {
		agg := &core.Aggregates{
			MonthsCount: 24,
			Records:     []core.ClassifiedRecord{mkPurchase("2023-01-01", "X社", "100")},
		}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemUnitPriceInflation)
		if f.Severity != core.SeverityGrey {
			t.Errorf("severity = %s, want grey", f.Severity)
		}
	})

	t.Run("15 percent increase is red", func(t *testing.T) {
		curr := priced("2023-06-01", "X社", "115", "1")
		prior := priced("2022-06-01", "X社", "100", "1")
		agg := &core.Aggregates{
			MonthsCount: 24,
			Records:     []core.ClassifiedRecord{curr, prior},
			Current:     []core.ClassifiedRecord{curr},
			Prior:       []core.ClassifiedRecord{prior},
		}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemUnitPriceInflation)
		if f.Severity != core.SeverityRed || f.Result != "+15.0%" {
			t.Errorf("got %s %q, want red +15.0%%", f.Severity, f.Result)
		}
	})

	t.Run("5 percent increase is blue", func(t *testing.T) {
		curr := priced("2023-06-01", "X社", "105", "1")
		prior := priced("2022-06-01", "X社", "100", "1")
		agg := &core.Aggregates{
			MonthsCount: 24,
			Records:     []core.ClassifiedRecord{curr, prior},
			Current:     []core.ClassifiedRecord{curr},
			Prior:       []core.ClassifiedRecord{prior},
		}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemUnitPriceInflation)
		if f.Severity != core.SeverityBlue || f.Result != "+5.0%" {
			t.Errorf("got %s %q, want blue +5.0%%", f.Severity, f.Result)
		}
	})

	t.Run("no prior year prices is grey", func(t *testing.T) {
		curr := priced("2023-06-01", "X社", "115", "1")
		agg := &core.Aggregates{
			MonthsCount: 24,
			Records:     []core.ClassifiedRecord{curr},
			Current:     []core.ClassifiedRecord{curr},
			Prior:       []core.ClassifiedRecord{mkPurchase("2022-06-01", "X社", "100")},
		}
		f := findByItem(t, core.EvaluateRules(agg, core.BalanceSummary{}), core.ItemUnitPriceInflation)
		if f.Severity != core.SeverityGrey || f.Result != "判定不可" {
			t.Errorf("got %s %q, want grey 判定不可", f.Severity, f.Result)
		}
	})
}
