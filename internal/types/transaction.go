package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind is the time granularity used to bucket transactions
type PeriodKind string

const (
	PeriodMonth PeriodKind = "month"
	PeriodYear  PeriodKind = "year"
	PeriodTotal PeriodKind = "total"
)

// Source identifies where in a statement file a transaction came from
type Source struct {
	File string
	Row  int
}

// Transaction represents a single statement row, independent of the bank's
// export format. Everything except Category is fixed at parse time.
type Transaction struct {
	Key         string
	Date        time.Time
	Description string
	MerchantKey string
	Amount      decimal.Decimal
	Category    string
	Source      Source
}

// Credit reports whether the transaction is money in
func (t Transaction) Credit() bool {
	return t.Amount.Sign() > 0
}

// TransactionKey creates a stable ID for a transaction based on its date,
// raw description, amount and position in the source file. Bank exports carry
// no explicit IDs, so re-parsing the same file must reproduce the same key.
func TransactionKey(date time.Time, description string, amount decimal.Decimal, source Source) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s:%d", date.Format("2006-01-02"), description, amount.String(), source.File, source.Row)
	return hex.EncodeToString(h.Sum(nil))[:12]
}
