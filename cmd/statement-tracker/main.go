package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"statement-tracker/internal/engine"
	"statement-tracker/internal/export"
	"statement-tracker/internal/statement"
	"statement-tracker/internal/store"
	"statement-tracker/internal/types"
)

type Globals struct {
	LogLevel   string `help:"Log level (debug, info, warn, error)" default:"info" env:"LOG_LEVEL"`
	DataDir    string `help:"Directory holding categories.csv and ignore.csv" default:"." env:"STATEMENT_DATA_DIR" type:"path"`
	Profiles   string `help:"YAML file with extra statement layout profiles" env:"STATEMENT_PROFILES" type:"path"`
	NoProgress bool   `help:"Disable progress bar" default:"false"`
	Dedup      bool   `help:"Drop duplicate transactions sharing a stable key" default:"false"`
}

type CLI struct {
	Globals

	Summary      SummaryCmd      `cmd:"" help:"Summarize statements by period and category"`
	Analyze      AnalyzeCmd      `cmd:"" help:"Show the month-by-month income/spend trend"`
	Review       ReviewCmd       `cmd:"" help:"List merchant keys that still need a category"`
	Assign       AssignCmd       `cmd:"" help:"Assign a category to one or more merchant keys"`
	Rename       RenameCmd       `cmd:"" help:"Rename a category across every merchant key"`
	Ignore       IgnoreCmd       `cmd:"" help:"Exclude transactions from analysis"`
	Unignore     UnignoreCmd     `cmd:"" help:"Bring ignored transactions back into analysis"`
	Ignored      IgnoredCmd      `cmd:"" help:"List ignored transactions"`
	Categories   CategoriesCmd   `cmd:"" help:"Show per-category lifetime stats"`
	Transactions TransactionsCmd `cmd:"" help:"List parsed transactions with resolved categories"`
	Export       ExportCmd       `cmd:"" help:"Write a summary CSV"`
}

func (g *Globals) logger() *log.Logger {
	logger := log.New(os.Stderr)
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		logger.Fatal("Invalid log level", "error", err)
	}
	logger.SetLevel(level)
	return logger
}

// setup parses the statement files and builds an engine over the data dir
// stores
func (g *Globals) setup(files []string) (*engine.Engine, *log.Logger, error) {
	logger := g.logger()

	opts := []statement.Option{}
	if g.Profiles != "" {
		profiles, err := statement.LoadProfiles(g.Profiles)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, statement.WithProfiles(profiles))
	}
	if !g.NoProgress && len(files) > 1 {
		opts = append(opts, statement.WithProgress(statement.NewBarProgress(len(files))))
	}

	result := statement.NewParser(logger, opts...).ParseFiles(files...)
	for _, rowErr := range result.RowErrors {
		logger.Warn("Skipped statement row", "file", rowErr.File, "row", rowErr.Row, "error", rowErr.Err)
	}
	if len(result.FileErrors) == len(files) && len(files) > 0 {
		return nil, nil, fmt.Errorf("no statement file could be parsed")
	}

	eng := engine.New(
		store.NewCategory(filepath.Join(g.DataDir, "categories.csv"), logger),
		store.NewIgnore(filepath.Join(g.DataDir, "ignore.csv"), logger),
		logger,
	)
	if err := eng.Load(result.Transactions, engine.Options{Dedup: g.Dedup}); err != nil {
		return nil, nil, err
	}
	return eng, logger, nil
}

func periodKind(period string) types.PeriodKind {
	switch period {
	case "year":
		return types.PeriodYear
	case "total":
		return types.PeriodTotal
	default:
		return types.PeriodMonth
	}
}

type SummaryCmd struct {
	Period string   `help:"Bucket size" enum:"month,year,total" default:"month"`
	Files  []string `arg:"" help:"Statement CSV files" type:"existingfile"`
}

func (c *SummaryCmd) Run(g *Globals) error {
	eng, _, err := g.setup(c.Files)
	if err != nil {
		return err
	}
	kind := periodKind(c.Period)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tCATEGORY\tSUM\tCOUNT\tAVERAGE")
	for _, b := range eng.Buckets(kind) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", b.Period, b.Category, b.Sum.StringFixed(2), b.Count, b.Avg.StringFixed(2))
	}
	fmt.Fprintln(w, "\t\t\t\t")
	fmt.Fprintln(w, "PERIOD\tINCOME\tSPEND\tNET\t")
	for _, t := range eng.Totals(kind) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", t.Period, t.Income.StringFixed(2), t.Spend.StringFixed(2), t.Net.StringFixed(2))
	}
	return w.Flush()
}

type AnalyzeCmd struct {
	Files []string `arg:"" help:"Statement CSV files" type:"existingfile"`
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	eng, _, err := g.setup(c.Files)
	if err != nil {
		return err
	}
	report := eng.Trend()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tINCOME\tSPEND\tNET\tCHANGE")
	for _, m := range report.Months {
		change := "N/A"
		if m.HasChange {
			change = m.NetChange.StringFixed(1) + "%"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Period, m.Income.StringFixed(2), m.Spend.StringFixed(2), m.Net.StringFixed(2), change)
	}
	fmt.Fprintln(w, "\t\t\t\t")
	fmt.Fprintf(w, "Total income\t%s\t\t\t\n", report.TotalIncome.StringFixed(2))
	fmt.Fprintf(w, "Total spend\t%s\t\t\t\n", report.TotalSpend.StringFixed(2))
	fmt.Fprintf(w, "Avg monthly income\t%s\t\t\t\n", report.AvgMonthlyIncome.StringFixed(2))
	fmt.Fprintf(w, "Avg monthly spend\t%s\t\t\t\n", report.AvgMonthlySpend.StringFixed(2))
	fmt.Fprintf(w, "Avg monthly net\t%s\t\t\t\n", report.AvgMonthlyNet.StringFixed(2))
	return w.Flush()
}

type ReviewCmd struct {
	Files []string `arg:"" help:"Statement CSV files" type:"existingfile"`
}

func (c *ReviewCmd) Run(g *Globals) error {
	eng, logger, err := g.setup(c.Files)
	if err != nil {
		return err
	}

	needsReview := eng.NeedsReview()
	if len(needsReview) == 0 {
		logger.Info("Every transaction has a category")
		return nil
	}

	// group review candidates by merchant key with an example description
	counts := make(map[string]int)
	examples := make(map[string]string)
	order := make([]string, 0)
	for _, txn := range needsReview {
		if counts[txn.MerchantKey] == 0 {
			order = append(order, txn.MerchantKey)
			examples[txn.MerchantKey] = txn.Description
		}
		counts[txn.MerchantKey]++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MERCHANT KEY\tTRANSACTIONS\tEXAMPLE")
	for _, key := range order {
		fmt.Fprintf(w, "%s\t%d\t%s\n", key, counts[key], examples[key])
	}
	return w.Flush()
}

type AssignCmd struct {
	Category string   `arg:"" help:"Category name"`
	Keys     []string `arg:"" help:"Merchant keys to assign"`
	Files    []string `help:"Statement CSV files, required when assigning more than one key" type:"existingfile"`
}

func (c *AssignCmd) Run(g *Globals) error {
	if len(c.Keys) == 1 {
		logger := g.logger()
		categories := store.NewCategory(filepath.Join(g.DataDir, "categories.csv"), logger)
		ignores := store.NewIgnore(filepath.Join(g.DataDir, "ignore.csv"), logger)
		return engine.New(categories, ignores, logger).SetCategory(c.Keys[0], c.Category)
	}

	// bulk assignment validates every key against the loaded transactions
	if len(c.Files) == 0 {
		return fmt.Errorf("assigning multiple keys requires --files to validate them against")
	}
	eng, _, err := g.setup(c.Files)
	if err != nil {
		return err
	}
	return eng.SetCategoryBulk(c.Keys, c.Category)
}

type RenameCmd struct {
	Old string `arg:"" help:"Current category name"`
	New string `arg:"" help:"New category name"`
}

func (c *RenameCmd) Run(g *Globals) error {
	logger := g.logger()
	categories := store.NewCategory(filepath.Join(g.DataDir, "categories.csv"), logger)
	ignores := store.NewIgnore(filepath.Join(g.DataDir, "ignore.csv"), logger)

	moved, err := engine.New(categories, ignores, logger).RenameCategory(c.Old, c.New)
	if err != nil {
		return err
	}
	if moved == 0 {
		logger.Warn("No merchant keys use that category", "category", c.Old)
	}
	return nil
}

type IgnoreCmd struct {
	Keys  []string `arg:"" help:"Transaction keys to ignore"`
	Files []string `help:"Statement CSV files the keys belong to" type:"existingfile" required:""`
}

func (c *IgnoreCmd) Run(g *Globals) error {
	eng, _, err := g.setup(c.Files)
	if err != nil {
		return err
	}
	for _, key := range c.Keys {
		if err := eng.Ignore(key); err != nil {
			return err
		}
	}
	return nil
}

type UnignoreCmd struct {
	Keys []string `arg:"" help:"Transaction keys to restore"`
}

func (c *UnignoreCmd) Run(g *Globals) error {
	logger := g.logger()
	categories := store.NewCategory(filepath.Join(g.DataDir, "categories.csv"), logger)
	ignores := store.NewIgnore(filepath.Join(g.DataDir, "ignore.csv"), logger)

	eng := engine.New(categories, ignores, logger)
	for _, key := range c.Keys {
		if err := eng.Unignore(key); err != nil {
			return err
		}
	}
	return nil
}

type IgnoredCmd struct {
	Files []string `arg:"" optional:"" help:"Statement CSV files, shown alongside each key when given" type:"existingfile"`
}

func (c *IgnoredCmd) Run(g *Globals) error {
	logger := g.logger()
	ignores := store.NewIgnore(filepath.Join(g.DataDir, "ignore.csv"), logger)

	keys := ignores.Keys()
	if len(keys) == 0 {
		logger.Info("No ignored transactions")
		return nil
	}

	details := make(map[string]types.Transaction)
	if len(c.Files) > 0 {
		result := statement.NewParser(logger).ParseFiles(c.Files...)
		for _, txn := range result.Transactions {
			details[txn.Key] = txn
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tDATE\tDESCRIPTION\tAMOUNT")
	for _, key := range keys {
		if txn, ok := details[key]; ok {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, txn.Date.Format("2006-01-02"), txn.Description, txn.Amount.StringFixed(2))
		} else {
			fmt.Fprintf(w, "%s\t\t\t\n", key)
		}
	}
	return w.Flush()
}

type CategoriesCmd struct {
	Files []string `arg:"" optional:"" help:"Statement CSV files for lifetime stats" type:"existingfile"`
}

func (c *CategoriesCmd) Run(g *Globals) error {
	if len(c.Files) == 0 {
		logger := g.logger()
		categories := store.NewCategory(filepath.Join(g.DataDir, "categories.csv"), logger)
		for _, name := range categories.Categories() {
			fmt.Println(name)
		}
		return nil
	}

	eng, _, err := g.setup(c.Files)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCOUNT\tNET\tNET/TXN")
	for _, s := range eng.CategoryStats() {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Category, s.Count, s.Net.StringFixed(2), s.AvgNet.StringFixed(2))
	}
	return w.Flush()
}

type TransactionsCmd struct {
	Files []string `arg:"" help:"Statement CSV files" type:"existingfile"`
}

func (c *TransactionsCmd) Run(g *Globals) error {
	eng, _, err := g.setup(c.Files)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
	for _, txn := range eng.Transactions() {
		category := txn.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", txn.Key, txn.Date.Format("2006-01-02"), txn.Description, category, txn.Amount.StringFixed(2))
	}
	return w.Flush()
}

type ExportCmd struct {
	Period string   `help:"Bucket size for the summary layout" enum:"month,year,total" default:"month"`
	Layout string   `help:"Output layout" enum:"summary,breakdown" default:"summary"`
	Output string   `help:"Output file, stdout when omitted" type:"path"`
	Files  []string `arg:"" help:"Statement CSV files" type:"existingfile"`
}

func (c *ExportCmd) Run(g *Globals) error {
	eng, logger, err := g.setup(c.Files)
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch c.Layout {
	case "breakdown":
		err = export.WriteBreakdown(out, eng.Transactions())
	default:
		err = export.WriteBuckets(out, eng.Buckets(periodKind(c.Period)))
	}
	if err != nil {
		return err
	}
	if c.Output != "" {
		logger.Info("Wrote summary", "file", c.Output, "layout", c.Layout)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("statement-tracker"),
		kong.Description("Import bank statements, categorize merchants and summarize spending"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		var invalid *engine.InvalidMutationError
		if errors.As(err, &invalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", invalid)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
