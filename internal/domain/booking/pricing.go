package booking

import "github.com/shopspring/decimal"

const (
	hoursPerDay = 24
	// 1ヶ月は24時間×30日の固定近似で扱う（暦月に合わせない既存仕様）
	hoursPerMonth = 720
)

// PriceTable はプラン別の基準料金を保持する
// Amount は純粋関数であり、同じ入力に対して常に同じ金額を返す
type PriceTable struct {
	HourlyRate  decimal.Decimal
	DailyRate   decimal.Decimal
	MonthlyRate decimal.Decimal
}

// DefaultPriceTable は既定の料金表を返す
func DefaultPriceTable() PriceTable {
	return PriceTable{
		HourlyRate:  decimal.NewFromInt(10),
		DailyRate:   decimal.NewFromInt(50),
		MonthlyRate: decimal.NewFromInt(500),
	}
}

// Amount はプランと利用時間から合計金額を算出する
// 未知プランは金額0を返す（意図が不明なため既存挙動をそのまま保存している）
func (t PriceTable) Amount(plan Plan, durationHours decimal.Decimal) decimal.Decimal {
	switch plan {
	case PlanHourly:
		return t.HourlyRate.Mul(durationHours).Round(2)
	case PlanDaily:
		return t.DailyRate.Mul(durationHours).Div(decimal.NewFromInt(hoursPerDay)).Round(2)
	case PlanMonthly:
		return t.MonthlyRate.Mul(durationHours).Div(decimal.NewFromInt(hoursPerMonth)).Round(2)
	default:
		return decimal.Zero
	}
}
