package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceTable_Amount(t *testing.T) {
	table := DefaultPriceTable()

	tests := []struct {
		name     string
		plan     Plan
		duration string
		want     string
	}{
		{"時間プラン2時間", PlanHourly, "2", "20.00"},
		{"時間プラン30分", PlanHourly, "0.5", "5.00"},
		{"日プラン24時間は1日分", PlanDaily, "24", "50.00"},
		{"日プラン12時間は半日分", PlanDaily, "12", "25.00"},
		{"月プラン720時間は1ヶ月分", PlanMonthly, "720", "500.00"},
		{"月プラン360時間は半月分", PlanMonthly, "360", "250.00"},
		{"未知プランは0", Plan("weekly"), "10", "0"},
		{"空プランも0", Plan(""), "10", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Amount(tt.plan, decimal.RequireFromString(tt.duration))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestPriceTable_Amount_小数は2桁に丸める(t *testing.T) {
	table := DefaultPriceTable()

	// 1時間40分 = 5/3時間 → 10 * 5/3 = 16.666... → 16.67
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	duration := WindowHours(start, start.Add(100*time.Minute))

	got := table.Amount(PlanHourly, duration)
	assert.True(t, got.Equal(decimal.RequireFromString("16.67")), "got %s", got)
}

func TestPriceTable_Amount_料金表を差し替えられる(t *testing.T) {
	table := PriceTable{
		HourlyRate:  decimal.NewFromInt(100),
		DailyRate:   decimal.NewFromInt(1000),
		MonthlyRate: decimal.NewFromInt(10000),
	}

	got := table.Amount(PlanHourly, decimal.NewFromInt(3))
	assert.True(t, got.Equal(decimal.NewFromInt(300)), "got %s", got)
}
