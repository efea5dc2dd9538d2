// Package categorize resolves transactions against the merchant category
// mappings, splitting them into categorized transactions and review
// candidates.
package categorize

import (
	"statement-tracker/internal/store"
	"statement-tracker/internal/types"
)

// Resolution is the outcome of partitioning a transaction set. NeedsReview
// holds the transactions whose merchant key has no category assignment yet.
type Resolution struct {
	Categorized []types.Transaction
	NeedsReview []types.Transaction
}

// Partition looks up every transaction's merchant key in the category store
// and fills in the Category field on matches. No matching is fuzzy: a key
// either has an assignment or it needs review.
func Partition(transactions []types.Transaction, categories *store.Category) Resolution {
	var res Resolution
	for _, txn := range transactions {
		if category, ok := categories.Lookup(txn.MerchantKey); ok {
			txn.Category = category
			res.Categorized = append(res.Categorized, txn)
		} else {
			txn.Category = ""
			res.NeedsReview = append(res.NeedsReview, txn)
		}
	}
	return res
}

// UnmappedKeys returns the distinct merchant keys of the transactions that
// need review, in first-seen order.
func UnmappedKeys(needsReview []types.Transaction) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)
	for _, txn := range needsReview {
		if seen[txn.MerchantKey] {
			continue
		}
		seen[txn.MerchantKey] = true
		keys = append(keys, txn.MerchantKey)
	}
	return keys
}
