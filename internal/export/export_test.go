package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-tracker/internal/types"
)

func TestWriteBuckets(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBuckets(&buf, []types.AggregateBucket{
		{
			Period:   "2024-01",
			Category: "Groceries",
			Sum:      decimal.RequireFromString("42.10"),
			Count:    1,
			Avg:      decimal.RequireFromString("42.10"),
		},
		{
			Period:   "2024-01",
			Category: "Uncategorized",
			Sum:      decimal.RequireFromString("2500.00"),
			Count:    1,
			Avg:      decimal.RequireFromString("2500.00"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"period,category,sum,count,average\n"+
			"2024-01,Groceries,42.10,1,42.10\n"+
			"2024-01,Uncategorized,2500.00,1,2500.00\n",
		buf.String())
}

func TestWriteBucketsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBuckets(&buf, nil))
	assert.Equal(t, "period,category,sum,count,average\n", buf.String())
}

func TestWriteBreakdown(t *testing.T) {
	date := func(day int) time.Time {
		return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
	}
	txns := []types.Transaction{
		{Date: date(5), Category: "Groceries", Amount: decimal.RequireFromString("-30.00")},
		{Date: date(12), Category: "Groceries", Amount: decimal.RequireFromString("-12.10")},
		{Date: date(20), Category: "Salary", Amount: decimal.RequireFromString("2500.00")},
		{Date: date(25), Amount: decimal.RequireFromString("-5.00")},
		{Date: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Category: "Groceries", Amount: decimal.RequireFromString("-9.99")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBreakdown(&buf, txns))

	assert.Equal(t,
		"Month,Type,Category,Amount\n"+
			"2024-01,Income,Salary,2500.00\n"+
			"2024-01,Spending,Groceries,42.10\n"+
			"2024-01,Spending,Uncategorized,5.00\n"+
			"2024-02,Spending,Groceries,9.99\n",
		buf.String())
}

func TestWriteBreakdownMixedSignCategory(t *testing.T) {
	// a refund does not net against the month's purchases, it gets its own
	// Income row
	txns := []types.Transaction{
		{
			Date:     time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
			Category: "Groceries",
			Amount:   decimal.RequireFromString("-50.00"),
		},
		{
			Date:     time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC),
			Category: "Groceries",
			Amount:   decimal.RequireFromString("10.00"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBreakdown(&buf, txns))

	assert.Equal(t,
		"Month,Type,Category,Amount\n"+
			"2024-01,Income,Groceries,10.00\n"+
			"2024-01,Spending,Groceries,50.00\n",
		buf.String())
}
