package aggregate

import (
	"github.com/shopspring/decimal"

	"statement-tracker/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Trend builds the month-by-month trend report: overall and average monthly
// income/spend/net plus the percent change in net versus the previous month.
// The first month has no change figure, and neither does a month following a
// zero net.
func Trend(transactions []types.Transaction) types.TrendReport {
	monthly := Totals(transactions, types.PeriodMonth)

	var report types.TrendReport
	if len(monthly) == 0 {
		return report
	}

	months := make([]types.TrendPoint, 0, len(monthly))
	for i, totals := range monthly {
		point := types.TrendPoint{
			Period: totals.Period,
			Income: totals.Income,
			Spend:  totals.Spend,
			Net:    totals.Net,
		}
		if i > 0 {
			prev := monthly[i-1].Net
			if !prev.IsZero() {
				point.NetChange = totals.Net.Sub(prev).Div(prev.Abs()).Mul(hundred)
				point.HasChange = true
			}
		}
		months = append(months, point)

		report.TotalIncome = report.TotalIncome.Add(totals.Income)
		report.TotalSpend = report.TotalSpend.Add(totals.Spend)
	}

	n := decimal.NewFromInt(int64(len(monthly)))
	report.AvgMonthlyIncome = report.TotalIncome.Div(n)
	report.AvgMonthlySpend = report.TotalSpend.Div(n)
	report.AvgMonthlyNet = report.TotalIncome.Sub(report.TotalSpend).Div(n)
	report.Months = months
	return report
}
