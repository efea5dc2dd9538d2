// Package export serializes computed summaries to CSV
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"statement-tracker/internal/aggregate"
	"statement-tracker/internal/types"
)

// WriteBuckets writes period/category buckets as
// period,category,sum,count,average rows, mirroring the bucket sequence.
func WriteBuckets(w io.Writer, buckets []types.AggregateBucket) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"period", "category", "sum", "count", "average"}}
	for _, b := range buckets {
		records = append(records, []string{
			b.Period,
			b.Category,
			b.Sum.StringFixed(2),
			strconv.Itoa(b.Count),
			b.Avg.StringFixed(2),
		})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteBreakdown writes the Month,Type,Category,Amount layout. Income and
// spending accumulate separately, so a category with both credits and debits
// in one month gets an Income row and a Spending row rather than a netted
// figure.
func WriteBreakdown(w io.Writer, transactions []types.Transaction) error {
	type rowKey struct {
		month    string
		category string
	}

	income := make(map[rowKey]decimal.Decimal)
	spending := make(map[rowKey]decimal.Decimal)
	for _, txn := range transactions {
		category := txn.Category
		if category == "" {
			category = "Uncategorized"
		}
		k := rowKey{month: aggregate.PeriodLabel(types.PeriodMonth, txn.Date), category: category}
		if txn.Credit() {
			income[k] = income[k].Add(txn.Amount)
		} else {
			spending[k] = spending[k].Add(txn.Amount.Abs())
		}
	}

	type row struct {
		month    string
		typ      string
		category string
		amount   decimal.Decimal
	}
	rows := make([]row, 0, len(income)+len(spending))
	for k, sum := range income {
		rows = append(rows, row{month: k.month, typ: "Income", category: k.category, amount: sum})
	}
	for k, sum := range spending {
		rows = append(rows, row{month: k.month, typ: "Spending", category: k.category, amount: sum})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].month != rows[j].month {
			return rows[i].month < rows[j].month
		}
		if rows[i].typ != rows[j].typ {
			return rows[i].typ < rows[j].typ
		}
		return rows[i].category < rows[j].category
	})

	cw := csv.NewWriter(w)
	records := [][]string{{"Month", "Type", "Category", "Amount"}}
	for _, r := range rows {
		records = append(records, []string{r.month, r.typ, r.category, r.amount.StringFixed(2)})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write breakdown: %w", err)
	}
	return nil
}
