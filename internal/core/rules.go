package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Diagnostic thresholds.
var (
	cashRatioFloor     = decimal.NewFromInt(3)            // % of annual sales
	entryDelayRedRate  = decimal.NewFromInt(20)           // % of delayed entries
	marginSwingLimit   = decimal.RequireFromString("0.1") // month-over-month margin delta
	collectionDaysRed  = decimal.NewFromInt(5)            // AR-days drift vs prior year
	retentionRedRate   = decimal.NewFromInt(20)           // % of new partners retained
	concentrationLimit = decimal.NewFromInt(70)           // top-3 partner share %
	unitPriceRedRate   = decimal.NewFromInt(10)           // % unit-price inflation
)

const entryDelayDays = 15

// EvaluateRules runs the 11 diagnostic rules against the aggregates and the
// balance summary. Rules never fail: a rule whose precondition is unmet
// emits a grey finding with an explanatory comment so the report is always
// complete. Findings come back in fixed report order.
func EvaluateRules(agg *Aggregates, bs BalanceSummary) []Finding {
	findings := make([]Finding, 0, 11)

	findings = append(findings, ruleCashThinness(agg, bs))
	findings = append(findings, rulePayablesTrend(agg))

	findings = append(findings, ruleEntryDelay(agg))
	findings = append(findings, ruleMarginVolatility(agg))
	findings = append(findings, ruleCollectionDays(agg))

	newPartners, newPartnersFinding := ruleNewPartners(agg)
	findings = append(findings, newPartnersFinding)
	findings = append(findings, ruleNewPartnerRetention(agg, newPartners))
	findings = append(findings, ruleMarginTrend(agg))
	findings = append(findings, ruleSalesConcentration(agg))

	findings = append(findings, ruleCostConcentration(agg))
	findings = append(findings, ruleUnitPriceInflation(agg))

	return findings
}

// 現金薄さ: period-end cash against annualized sales, floor 3%.
func ruleCashThinness(agg *Aggregates, bs BalanceSummary) Finding {
	if !bs.Present || !agg.AnnualSales.IsPositive() {
		return Finding{
			Category: CategoryCashFlow, Item: ItemCashThinness,
			Result:   "なし",
			Comment:  "貸借対照表がない、または売上が0のため判定できません",
			Severity: SeverityGrey,
		}
	}
	ratio := bs.CashTotal.Div(agg.AnnualSales).Mul(decimal.NewFromInt(100))
	severity := SeverityBlue
	if ratio.LessThan(cashRatioFloor) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryCashFlow, Item: ItemCashThinness,
		Result:   ratio.StringFixed(1) + "%",
		Comment:  fmt.Sprintf("年商に対する現預金比率が%s%%です（目安3%%以上）", ratio.StringFixed(1)),
		Severity: severity,
	}
}

// 買掛・未払残高: payables strictly increasing over the last 3 present buckets.
func rulePayablesTrend(agg *Aggregates) Finding {
	if len(agg.Monthly) < 3 {
		return Finding{
			Category: CategoryCashFlow, Item: ItemPayablesTrend,
			Result:   "なし",
			Comment:  "データが3ヶ月分に満たないため判定できません",
			Severity: SeverityGrey,
		}
	}
	last := agg.Monthly[len(agg.Monthly)-3:]
	increasing := last[0].Payables.LessThan(last[1].Payables) &&
		last[1].Payables.LessThan(last[2].Payables)
	if increasing {
		return Finding{
			Category: CategoryCashFlow, Item: ItemPayablesTrend,
			Result:   "確認",
			Comment:  "買掛・未払金が3ヶ月連続で増加しています",
			Severity: SeverityRed,
		}
	}
	return Finding{
		Category: CategoryCashFlow, Item: ItemPayablesTrend,
		Result:   "安定",
		Comment:  "急激な増加は見られません",
		Severity: SeverityBlue,
	}
}

// 仕訳入力遅延: share of entries booked more than 15 days after the
// transaction date.
func ruleEntryDelay(agg *Aggregates) Finding {
	total := 0
	delayed := 0
	for i := range agg.Records {
		rec := &agg.Records[i]
		if rec.CreatedAt == nil {
			continue
		}
		total++
		if dayDiff(*rec.Date, *rec.CreatedAt) > entryDelayDays {
			delayed++
		}
	}
	if total == 0 {
		return Finding{
			Category: CategoryQuality, Item: ItemEntryDelay,
			Result:   "なし",
			Comment:  "CSVに「作成日（登録日）」列がないため判定できません",
			Severity: SeverityGrey,
		}
	}
	rate := decimal.NewFromInt(int64(delayed * 100)).Div(decimal.NewFromInt(int64(total)))
	severity := SeverityBlue
	if rate.GreaterThanOrEqual(entryDelayRedRate) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryQuality, Item: ItemEntryDelay,
		Result:   rate.StringFixed(1) + "%",
		Comment:  fmt.Sprintf("15日以上の入力遅延が%s%%発生しています", rate.StringFixed(1)),
		Severity: severity,
	}
}

// 粗利率ブレ: any month-over-month margin swing above 0.10.
func ruleMarginVolatility(agg *Aggregates) Finding {
	if len(agg.Monthly) < 2 {
		return Finding{
			Category: CategoryQuality, Item: ItemMarginVolatility,
			Result:   "なし",
			Comment:  "データが2ヶ月分に満たないため判定できません",
			Severity: SeverityGrey,
		}
	}
	volatile := false
	for i := 1; i < len(agg.Monthly); i++ {
		swing := agg.Monthly[i].Margin.Sub(agg.Monthly[i-1].Margin).Abs()
		if swing.GreaterThan(marginSwingLimit) {
			volatile = true
			break
		}
	}
	if volatile {
		return Finding{
			Category: CategoryQuality, Item: ItemMarginVolatility,
			Result:   "変動あり",
			Comment:  "月次の粗利率に10%以上の変動が見られます",
			Severity: SeverityRed,
		}
	}
	return Finding{
		Category: CategoryQuality, Item: ItemMarginVolatility,
		Result:   "安定",
		Comment:  "安定した粗利率で推移しています",
		Severity: SeverityBlue,
	}
}

// 入金サイト延伸: receivable collection days, current year vs prior year.
func ruleCollectionDays(agg *Aggregates) Finding {
	if agg.MonthsCount < 13 || len(agg.Prior) == 0 {
		return Finding{
			Category: CategoryQuality, Item: ItemCollectionDays,
			Result:   "なし",
			Comment:  "データが12ヶ月分のみのため判定できません",
			Severity: SeverityGrey,
		}
	}
	diff := arDays(agg.Current).Sub(arDays(agg.Prior))
	severity := SeverityBlue
	if diff.GreaterThanOrEqual(collectionDaysRed) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryQuality, Item: ItemCollectionDays,
		Result:   signedFixed1(diff) + "日",
		Comment:  fmt.Sprintf("回収期間が前年比で%s日変動しています", signedFixed1(diff)),
		Severity: severity,
	}
}

// arDays derives the collection period: receivable debits over credited
// sales, annualized. Zero when the period booked no sales.
func arDays(records []ClassifiedRecord) decimal.Decimal {
	sales := decimal.Zero
	arDebits := decimal.Zero
	for i := range records {
		rec := &records[i]
		if containsAny(rec.CreditAccount, salesKeywords) {
			sales = sales.Add(amountOrZero(rec.CreditAmount))
		}
		if containsAny(rec.DebitAccount, receivablesKeywords) {
			arDebits = arDebits.Add(amountOrZero(rec.DebitAmount))
		}
	}
	if !sales.IsPositive() {
		return decimal.Zero
	}
	return arDebits.Div(sales).Mul(decimal.NewFromInt(365))
}

// 新規取引先数: sales counterparties seen this year but not last year.
// The new-partner set feeds the retention rule.
func ruleNewPartners(agg *Aggregates) (map[string]bool, Finding) {
	if agg.MonthsCount < 13 || len(agg.Prior) == 0 {
		return nil, Finding{
			Category: CategoryRevenue, Item: ItemNewPartners,
			Result:   "なし",
			Comment:  "比較対象となる昨年のデータがないため判定できません",
			Severity: SeverityGrey,
		}
	}
	curr := salesPartners(agg.Current)
	prior := salesPartners(agg.Prior)
	newPartners := make(map[string]bool)
	for p := range curr {
		if !prior[p] {
			newPartners[p] = true
		}
	}
	severity := SeverityBlue
	if len(newPartners) == 0 {
		severity = SeverityRed
	}
	return newPartners, Finding{
		Category: CategoryRevenue, Item: ItemNewPartners,
		Result:   fmt.Sprintf("%d社", len(newPartners)),
		Comment:  fmt.Sprintf("直近1年で%d社の新規取引先がありました", len(newPartners)),
		Severity: severity,
	}
}

func salesPartners(records []ClassifiedRecord) map[string]bool {
	partners := make(map[string]bool)
	for i := range records {
		if records[i].Class.Sales && records[i].CreditPartner != "" {
			partners[records[i].CreditPartner] = true
		}
	}
	return partners
}

// 新規継続率: share of new partners with a second transaction within 90
// days of their first.
func ruleNewPartnerRetention(agg *Aggregates, newPartners map[string]bool) Finding {
	if agg.MonthsCount < 13 || len(newPartners) == 0 {
		return Finding{
			Category: CategoryRevenue, Item: ItemNewPartnerRetain,
			Result:   "なし",
			Comment:  "新規取引先がいない、または12ヶ月分のみのため判定できません",
			Severity: SeverityGrey,
		}
	}

	names := make([]string, 0, len(newPartners))
	for p := range newPartners {
		names = append(names, p)
	}
	sort.Strings(names)

	retained := 0
	for _, p := range names {
		var dates []ClassifiedRecord
		for i := range agg.Current {
			if agg.Current[i].CreditPartner == p {
				dates = append(dates, agg.Current[i])
			}
		}
		sort.SliceStable(dates, func(i, j int) bool {
			return dates[i].Date.Before(*dates[j].Date)
		})
		if len(dates) > 1 && dayDiff(*dates[0].Date, *dates[1].Date) <= 90 {
			retained++
		}
	}

	rate := decimal.NewFromInt(int64(retained * 100)).Div(decimal.NewFromInt(int64(len(newPartners))))
	severity := SeverityBlue
	if rate.LessThan(retentionRedRate) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryRevenue, Item: ItemNewPartnerRetain,
		Result:   rate.StringFixed(1) + "%",
		Comment:  fmt.Sprintf("新規取引先のうち%s%%が3ヶ月以内に再取引しています", rate.StringFixed(1)),
		Severity: severity,
	}
}

// 粗利率トレンド: margin strictly decreasing over the last 3 present buckets.
func ruleMarginTrend(agg *Aggregates) Finding {
	if len(agg.Monthly) < 3 {
		return Finding{
			Category: CategoryRevenue, Item: ItemMarginTrend,
			Result:   "なし",
			Comment:  "データが3ヶ月分に満たないため判定できません",
			Severity: SeverityGrey,
		}
	}
	last := agg.Monthly[len(agg.Monthly)-3:]
	declining := last[0].Margin.GreaterThan(last[1].Margin) &&
		last[1].Margin.GreaterThan(last[2].Margin)
	if declining {
		return Finding{
			Category: CategoryRevenue, Item: ItemMarginTrend,
			Result:   "低下中",
			Comment:  "粗利率が3ヶ月連続で低下しています",
			Severity: SeverityRed,
		}
	}
	return Finding{
		Category: CategoryRevenue, Item: ItemMarginTrend,
		Result:   "安定",
		Comment:  "粗利率の継続的な低下は見られません",
		Severity: SeverityBlue,
	}
}

// 上位3社売上集中度: top-3 counterparty share of total sales.
func ruleSalesConcentration(agg *Aggregates) Finding {
	share, ok := topThreeShare(agg.Records, func(cr *ClassifiedRecord) (string, decimal.Decimal, bool) {
		return cr.CreditPartner, cr.SalesAmt, cr.Class.Sales
	})
	if !ok {
		return Finding{
			Category: CategoryRevenue, Item: ItemSalesConcentration,
			Result:   "なし",
			Comment:  "取引先別の売上データがありません",
			Severity: SeverityGrey,
		}
	}
	severity := SeverityBlue
	if share.GreaterThanOrEqual(concentrationLimit) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryRevenue, Item: ItemSalesConcentration,
		Result:   share.StringFixed(1) + "%",
		Comment:  fmt.Sprintf("上位3社への売上集中度が%s%%です", share.StringFixed(1)),
		Severity: severity,
	}
}

// 上位3社仕入集中度: top-3 counterparty share of total purchasing.
func ruleCostConcentration(agg *Aggregates) Finding {
	share, ok := topThreeShare(agg.Records, func(cr *ClassifiedRecord) (string, decimal.Decimal, bool) {
		return cr.DebitPartner, cr.COGSAmt, cr.Class.COGS
	})
	if !ok {
		return Finding{
			Category: CategoryProcure, Item: ItemCostConcentration,
			Result:   "なし",
			Comment:  "取引先別の仕入データがありません",
			Severity: SeverityGrey,
		}
	}
	severity := SeverityBlue
	if share.GreaterThanOrEqual(concentrationLimit) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryProcure, Item: ItemCostConcentration,
		Result:   share.StringFixed(1) + "%",
		Comment:  fmt.Sprintf("上位3社への仕入集中度が%s%%です", share.StringFixed(1)),
		Severity: severity,
	}
}

// topThreeShare groups matching records by partner, sums the attributed
// amount, and returns the top-3 share of the total in percent. ok is false
// when no partner qualifies at all.
func topThreeShare(records []ClassifiedRecord, pick func(*ClassifiedRecord) (string, decimal.Decimal, bool)) (decimal.Decimal, bool) {
	sums := make(map[string]decimal.Decimal)
	for i := range records {
		partner, amount, matches := pick(&records[i])
		if !matches || partner == "" {
			continue
		}
		sums[partner] = sums[partner].Add(amount)
	}
	if len(sums) == 0 {
		return decimal.Zero, false
	}

	totals := make([]decimal.Decimal, 0, len(sums))
	total := decimal.Zero
	for _, v := range sums {
		totals = append(totals, v)
		total = total.Add(v)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].GreaterThan(totals[j]) })

	top := decimal.Zero
	for i := 0; i < len(totals) && i < 3; i++ {
		top = top.Add(totals[i])
	}
	if !total.IsPositive() {
		return decimal.Zero, true
	}
	return top.Div(total).Mul(decimal.NewFromInt(100)), true
}

// 単価上昇率: average purchase unit price, current year vs prior year.
// Unit price is the per-row cost amount over quantity, averaged across rows
// that carry a non-zero quantity.
func ruleUnitPriceInflation(agg *Aggregates) Finding {
	hasQuantity := false
	for i := range agg.Records {
		if agg.Records[i].Quantity.Valid {
			hasQuantity = true
			break
		}
	}
	if agg.MonthsCount < 13 || !hasQuantity {
		return Finding{
			Category: CategoryProcure, Item: ItemUnitPriceInflation,
			Result:   "なし",
			Comment:  "数量データ（quantity列）がないため判定できません",
			Severity: SeverityGrey,
		}
	}

	avgCurr, okCurr := averageUnitPrice(agg.Current)
	avgPrev, okPrev := averageUnitPrice(agg.Prior)
	if !okPrev || !avgPrev.IsPositive() || !okCurr {
		return Finding{
			Category: CategoryProcure, Item: ItemUnitPriceInflation,
			Result:   "判定不可",
			Comment:  "前年の価格データが不足しています",
			Severity: SeverityGrey,
		}
	}

	increase := avgCurr.Div(avgPrev).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	severity := SeverityBlue
	if increase.GreaterThanOrEqual(unitPriceRedRate) {
		severity = SeverityRed
	}
	return Finding{
		Category: CategoryProcure, Item: ItemUnitPriceInflation,
		Result:   signedFixed1(increase) + "%",
		Comment:  fmt.Sprintf("仕入平均単価が前年比で%s%%変動しています", signedFixed1(increase)),
		Severity: severity,
	}
}

func averageUnitPrice(records []ClassifiedRecord) (decimal.Decimal, bool) {
	sum := decimal.Zero
	count := 0
	for i := range records {
		rec := &records[i]
		if !rec.Quantity.Valid || rec.Quantity.Decimal.IsZero() {
			continue
		}
		sum = sum.Add(rec.COGSAmt.Div(rec.Quantity.Decimal))
		count++
	}
	if count == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(int64(count))), true
}

// dayDiff is the whole-day difference from -> to, truncated toward zero.
func dayDiff(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// signedFixed1 renders one decimal place with an explicit sign, the way the
// report formats year-over-year drifts.
func signedFixed1(d decimal.Decimal) string {
	s := d.StringFixed(1)
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}
