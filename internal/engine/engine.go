// Package engine owns the in-memory transaction state for the lifetime of the
// process and is the only path to mutating category and ignore data. Queries
// recompute from current state every time; the generation counter tells the
// presentation layer when cached output has gone stale.
package engine

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"statement-tracker/internal/aggregate"
	"statement-tracker/internal/categorize"
	"statement-tracker/internal/store"
	"statement-tracker/internal/types"
)

// InvalidMutationError reports a mutation rejected before anything was
// persisted
type InvalidMutationError struct {
	Op     string
	Keys   []string
	Reason string
}

func (e *InvalidMutationError) Error() string {
	if len(e.Keys) == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Reason, strings.Join(e.Keys, ", "))
}

// Options configures Load
type Options struct {
	// Dedup drops later transactions that share a stable key with an
	// earlier one. Off by default: two identical rows in one statement are
	// normally distinct purchases.
	Dedup bool
}

// Engine holds the loaded transaction set and coordinates the stores
type Engine struct {
	logger       *log.Logger
	categories   *store.Category
	ignores      *store.Ignore
	transactions []types.Transaction
	generation   uint64
}

// New creates an engine over the given stores
func New(categories *store.Category, ignores *store.Ignore, logger *log.Logger) *Engine {
	return &Engine{
		logger:     logger,
		categories: categories,
		ignores:    ignores,
	}
}

// Load replaces the engine's transaction set. Merchant keys without a
// category assignment are recorded in the category store so they survive as
// review candidates across runs.
func (e *Engine) Load(transactions []types.Transaction, opts Options) error {
	if opts.Dedup {
		seen := make(map[string]bool, len(transactions))
		deduped := make([]types.Transaction, 0, len(transactions))
		for _, txn := range transactions {
			if seen[txn.Key] {
				e.logger.Debug("Dropping duplicate transaction", "key", txn.Key, "file", txn.Source.File, "row", txn.Source.Row)
				continue
			}
			seen[txn.Key] = true
			deduped = append(deduped, txn)
		}
		if dropped := len(transactions) - len(deduped); dropped > 0 {
			e.logger.Info("Dropped duplicate transactions", "count", dropped)
		}
		transactions = deduped
	}

	e.transactions = transactions
	e.generation++

	res := categorize.Partition(transactions, e.categories)
	if err := e.categories.MarkUnmapped(categorize.UnmappedKeys(res.NeedsReview)); err != nil {
		return fmt.Errorf("failed to record unmapped merchant keys: %w", err)
	}
	e.logger.Info("Loaded transactions",
		"total", len(transactions),
		"categorized", len(res.Categorized),
		"needs_review", len(res.NeedsReview))
	return nil
}

// active returns the non-ignored transactions in load order with categories
// resolved from the current mappings
func (e *Engine) active() []types.Transaction {
	out := make([]types.Transaction, 0, len(e.transactions))
	for _, txn := range e.transactions {
		if e.ignores.IsIgnored(txn.Key) {
			continue
		}
		if category, ok := e.categories.Lookup(txn.MerchantKey); ok {
			txn.Category = category
		} else {
			txn.Category = ""
		}
		out = append(out, txn)
	}
	return out
}

// Transactions returns the non-ignored transactions with current categories
func (e *Engine) Transactions() []types.Transaction {
	return e.active()
}

// Buckets summarizes the non-ignored transactions by (period, category)
func (e *Engine) Buckets(kind types.PeriodKind) []types.AggregateBucket {
	return aggregate.Summarize(e.active(), kind)
}

// Totals computes per-period income, spend and net over the non-ignored
// transactions
func (e *Engine) Totals(kind types.PeriodKind) []types.PeriodTotals {
	return aggregate.Totals(e.active(), kind)
}

// Trend computes the month-by-month trend report
func (e *Engine) Trend() types.TrendReport {
	return aggregate.Trend(e.active())
}

// CategoryStats computes per-category lifetime figures
func (e *Engine) CategoryStats() []types.CategoryStat {
	return aggregate.CategoryStats(e.active())
}

// NeedsReview returns the non-ignored transactions whose merchant key has no
// category assignment
func (e *Engine) NeedsReview() []types.Transaction {
	return categorize.Partition(e.active(), e.categories).NeedsReview
}

// UnmappedKeys returns every merchant key known to need review, sorted
func (e *Engine) UnmappedKeys() []string {
	return e.categories.UnmappedKeys()
}

// Categories returns the distinct assigned category names, sorted
func (e *Engine) Categories() []string {
	return e.categories.Categories()
}

// IgnoredKeys returns the ignored transaction keys in the order they were
// added
func (e *Engine) IgnoredKeys() []string {
	return e.ignores.Keys()
}

// Generation increments on every successful mutation and on load. Presentation
// output computed at an older generation is stale.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// SetCategory assigns a category to a merchant key. The key does not have to
// appear in the loaded transaction set: mappings persist across sessions and
// may be created ahead of an import.
func (e *Engine) SetCategory(merchantKey, category string) error {
	if merchantKey == "" {
		return &InvalidMutationError{Op: "set-category", Reason: "empty merchant key"}
	}
	if category == "" {
		return &InvalidMutationError{Op: "set-category", Reason: "empty category"}
	}
	if err := e.categories.Assign(merchantKey, category); err != nil {
		return err
	}
	e.generation++
	e.logger.Info("Assigned category", "merchant_key", merchantKey, "category", category)
	return nil
}

// SetCategoryBulk assigns one category to many merchant keys. Every key must
// appear in the loaded transaction set; one unknown key rejects the whole
// batch and nothing is persisted.
func (e *Engine) SetCategoryBulk(merchantKeys []string, category string) error {
	if len(merchantKeys) == 0 {
		return &InvalidMutationError{Op: "set-category-bulk", Reason: "no merchant keys"}
	}
	if category == "" {
		return &InvalidMutationError{Op: "set-category-bulk", Reason: "empty category"}
	}

	known := make(map[string]bool, len(e.transactions))
	for _, txn := range e.transactions {
		known[txn.MerchantKey] = true
	}
	var unknown []string
	for _, key := range merchantKeys {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return &InvalidMutationError{Op: "set-category-bulk", Keys: unknown, Reason: "unknown merchant keys"}
	}

	assignments := make(map[string]string, len(merchantKeys))
	for _, key := range merchantKeys {
		assignments[key] = category
	}
	if err := e.categories.AssignBulk(assignments); err != nil {
		return err
	}
	e.generation++
	e.logger.Info("Assigned category in bulk", "merchant_keys", len(merchantKeys), "category", category)
	return nil
}

// Ignore excludes a transaction from analysis. The stored category mapping of
// its merchant is untouched.
func (e *Engine) Ignore(transactionKey string) error {
	if !e.knownTransaction(transactionKey) {
		return &InvalidMutationError{Op: "ignore", Keys: []string{transactionKey}, Reason: "unknown transaction key"}
	}
	if err := e.ignores.Add(transactionKey); err != nil {
		return err
	}
	e.generation++
	e.logger.Info("Ignored transaction", "key", transactionKey)
	return nil
}

// Unignore brings a previously ignored transaction back into analysis
func (e *Engine) Unignore(transactionKey string) error {
	if !e.ignores.IsIgnored(transactionKey) {
		return &InvalidMutationError{Op: "unignore", Keys: []string{transactionKey}, Reason: "transaction is not ignored"}
	}
	if err := e.ignores.Remove(transactionKey); err != nil {
		return err
	}
	e.generation++
	e.logger.Info("Unignored transaction", "key", transactionKey)
	return nil
}

// RenameCategory moves every merchant key assigned to old onto new
func (e *Engine) RenameCategory(old, new string) (int, error) {
	if old == "" || new == "" {
		return 0, &InvalidMutationError{Op: "rename-category", Reason: "empty category name"}
	}
	moved, err := e.categories.Rename(old, new)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		e.generation++
		e.logger.Info("Renamed category", "old", old, "new", new, "merchant_keys", moved)
	}
	return moved, nil
}

func (e *Engine) knownTransaction(key string) bool {
	for _, txn := range e.transactions {
		if txn.Key == key {
			return true
		}
	}
	return false
}
