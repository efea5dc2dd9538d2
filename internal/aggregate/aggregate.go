// Package aggregate computes time-bucketed summaries from a transaction set.
// Every computation is a full recomputation over its input; nothing here is
// incremental or cached.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"statement-tracker/internal/types"
)

// totalLabel is the single period label used by PeriodTotal
const totalLabel = "Total"

// uncategorizedLabel buckets transactions whose merchant key has no category
const uncategorizedLabel = "Uncategorized"

// PeriodLabel truncates a date to its period label: "2006-01" for months,
// "2006" for years, a constant for the all-time bucket.
func PeriodLabel(kind types.PeriodKind, date time.Time) string {
	switch kind {
	case types.PeriodMonth:
		return date.Format("2006-01")
	case types.PeriodYear:
		return date.Format("2006")
	default:
		return totalLabel
	}
}

// Summarize buckets transactions by (period, category). Sums are reported as
// magnitudes. Buckets come back in chronological order, then by category
// label within a period.
func Summarize(transactions []types.Transaction, kind types.PeriodKind) []types.AggregateBucket {
	type bucketKey struct {
		period   string
		category string
	}

	sums := make(map[bucketKey]decimal.Decimal)
	counts := make(map[bucketKey]int)
	for _, txn := range transactions {
		category := txn.Category
		if category == "" {
			category = uncategorizedLabel
		}
		k := bucketKey{period: PeriodLabel(kind, txn.Date), category: category}
		sums[k] = sums[k].Add(txn.Amount)
		counts[k]++
	}

	buckets := make([]types.AggregateBucket, 0, len(sums))
	for k, sum := range sums {
		count := counts[k]
		abs := sum.Abs()
		avg := decimal.Zero
		if count > 0 {
			avg = abs.Div(decimal.NewFromInt(int64(count)))
		}
		buckets = append(buckets, types.AggregateBucket{
			Period:   k.period,
			Category: k.category,
			Sum:      abs,
			Count:    count,
			Avg:      avg,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Period != buckets[j].Period {
			return buckets[i].Period < buckets[j].Period
		}
		return buckets[i].Category < buckets[j].Category
	})
	return buckets
}

// Totals computes per-period income, spend and net. Income sums the credits,
// spend is the magnitude of the summed debits, net is income minus spend.
func Totals(transactions []types.Transaction, kind types.PeriodKind) []types.PeriodTotals {
	income := make(map[string]decimal.Decimal)
	spend := make(map[string]decimal.Decimal)
	periods := make([]string, 0)
	seen := make(map[string]bool)

	for _, txn := range transactions {
		period := PeriodLabel(kind, txn.Date)
		if !seen[period] {
			seen[period] = true
			periods = append(periods, period)
		}
		if txn.Credit() {
			income[period] = income[period].Add(txn.Amount)
		} else {
			spend[period] = spend[period].Add(txn.Amount.Abs())
		}
	}
	sort.Strings(periods)

	totals := make([]types.PeriodTotals, 0, len(periods))
	for _, period := range periods {
		totals = append(totals, types.PeriodTotals{
			Period: period,
			Income: income[period],
			Spend:  spend[period],
			Net:    income[period].Sub(spend[period]),
		})
	}
	return totals
}

// CategoryStats computes per-category lifetime figures: transaction count,
// signed net total, and net per transaction.
func CategoryStats(transactions []types.Transaction) []types.CategoryStat {
	nets := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, txn := range transactions {
		category := txn.Category
		if category == "" {
			category = uncategorizedLabel
		}
		nets[category] = nets[category].Add(txn.Amount)
		counts[category]++
	}

	stats := make([]types.CategoryStat, 0, len(nets))
	for category, net := range nets {
		count := counts[category]
		avg := decimal.Zero
		if count > 0 {
			avg = net.Div(decimal.NewFromInt(int64(count)))
		}
		stats = append(stats, types.CategoryStat{
			Category: category,
			Count:    count,
			Net:      net,
			AvgNet:   avg,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Category < stats[j].Category
	})
	return stats
}
