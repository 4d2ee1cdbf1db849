// Package report assembles the diagnostic document, its condensed preview,
// and the downloadable prospect-list files.
package report

import "github.com/Traumerei-sf/tokumei-AI/internal/core"

// rootCauses maps each diagnostic item to its fixed 問題の本質 explanation,
// printed as the fifth column of the report table.
var rootCauses = map[string]string{
	core.ItemCashThinness:       "手元資金の不足は経営の心理的余裕を奪い、近視眼的な判断を招きます。常に3ヶ月分程度の現預金を確保する意識が必要です。",
	core.ItemPayablesTrend:      "支払いの先延ばしは取引先からの信用毀損に直結します。資金繰りの苦しさが、支払いサイクルに現れ始めていないか注視が必要です。",
	core.ItemEntryDelay:         "経理作業の遅れは、経営判断の遅れそのものです。『今』の状態が分からないまま舵取りをすることの危うさを認識すべきです。",
	core.ItemMarginVolatility:   "月ごとの粗利変動は、原価管理の甘さや、その場しのぎの値引き営業が行われている可能性を示唆しています。",
	core.ItemCollectionDays:     "回収の遅れは、顧客に対する力関係の弱体化を意味します。サービス提供への対価を正当に、迅速に受け取る仕組みを見直すべきです。",
	core.ItemNewPartners:        "新規開拓の停滞は、既存事業の陳腐化へのカウントダウンです。常に新しい血を入れ続ける営業活力を維持できているかが問われます。",
	core.ItemNewPartnerRetain:   "新規客が定着しないのは、商品力や初期対応の満足度に課題があるためです。釣り上げた魚を逃さない仕組みの構築が急務です。",
	core.ItemMarginTrend:        "緩やかな粗利率の下落は、競合過多や生産性低下のサインです。価格競争に巻き込まれない独自の価値提供を再定義する時期です。",
	core.ItemSalesConcentration: "特定顧客への依存は、経営の生殺与奪の権を他者に委ねることと同じです。不測の事態に備え、収益の柱を分散させる戦略が不可欠です。",
	core.ItemCostConcentration:  "仕入先の固定化は、コスト削減の機会損失や、供給停止リスクを孕みます。常に代替案を持ち、交渉力を維持する姿勢が求められます。",
	core.ItemUnitPriceInflation: "仕入単価の上昇を価格転嫁できない体質は、利益を蝕み続けます。コスト増を吸収する付加価値の向上か、価格改定の決断が迫られています。",
}

// RootCause returns the fixed explanation for an item, empty when unknown.
func RootCause(item string) string {
	return rootCauses[item]
}
