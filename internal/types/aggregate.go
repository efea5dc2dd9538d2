package types

import "github.com/shopspring/decimal"

// AggregateBucket is a derived (period, category) summary. Sum is the
// magnitude of the category's net movement in the period; Avg is Sum/Count.
type AggregateBucket struct {
	Period   string
	Category string
	Sum      decimal.Decimal
	Count    int
	Avg      decimal.Decimal
}

// PeriodTotals holds the income/spend/net split for one period, computed
// across every category. Spend is reported as a positive magnitude.
type PeriodTotals struct {
	Period string
	Income decimal.Decimal
	Spend  decimal.Decimal
	Net    decimal.Decimal
}

// TrendPoint is one month in a trend series. NetChange is the percent change
// of net versus the previous month; HasChange is false for the first month
// in the series.
type TrendPoint struct {
	Period    string
	Income    decimal.Decimal
	Spend     decimal.Decimal
	Net       decimal.Decimal
	NetChange decimal.Decimal
	HasChange bool
}

// TrendReport summarizes the whole transaction history month by month
type TrendReport struct {
	TotalIncome      decimal.Decimal
	TotalSpend       decimal.Decimal
	AvgMonthlyIncome decimal.Decimal
	AvgMonthlySpend  decimal.Decimal
	AvgMonthlyNet    decimal.Decimal
	Months           []TrendPoint
}

// CategoryStat is the lifetime view of one category: how many transactions
// it covers, their signed net total, and the net per transaction.
type CategoryStat struct {
	Category string
	Count    int
	Net      decimal.Decimal
	AvgNet   decimal.Decimal
}
