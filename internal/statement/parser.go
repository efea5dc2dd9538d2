package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"statement-tracker/internal/merchant"
	"statement-tracker/internal/types"
)

// Parser reads bank statement CSV exports into transactions
type Parser struct {
	logger   *log.Logger
	profiles []Profile
	mapping  *Mapping
	progress Progress
}

// Option configures a Parser
type Option func(*Parser)

// WithProfiles registers extra layout profiles, tried before the built-in ones
func WithProfiles(profiles []Profile) Option {
	return func(p *Parser) {
		p.profiles = append(profiles, p.profiles...)
	}
}

// WithMapping supplies an explicit column mapping used when no profile matches
func WithMapping(m *Mapping) Option {
	return func(p *Parser) {
		p.mapping = m
	}
}

// WithProgress sets the progress tracker used by ParseFiles
func WithProgress(progress Progress) Option {
	return func(p *Parser) {
		p.progress = progress
	}
}

// NewParser creates a new statement parser
func NewParser(logger *log.Logger, opts ...Option) *Parser {
	p := &Parser{
		logger:   logger,
		profiles: DefaultProfiles(),
		progress: NewNoopProgress(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of parsing a batch of statement files. Row errors are
// collected rather than aborting the file; file errors abort only that file.
type Result struct {
	Transactions []types.Transaction
	RowErrors    []RowError
	FileErrors   []ParseError
}

// ParseFiles parses every file in order, collecting errors as it goes
func (p *Parser) ParseFiles(paths ...string) Result {
	var result Result
	for _, path := range paths {
		p.progress.Describe(filepath.Base(path))
		txns, rowErrs, err := p.ParseFile(path)
		if err != nil {
			p.logger.Warn("Skipping unreadable statement", "file", path, "error", err)
			result.FileErrors = append(result.FileErrors, ParseError{File: path, Err: err})
		} else {
			result.Transactions = append(result.Transactions, txns...)
			result.RowErrors = append(result.RowErrors, rowErrs...)
		}
		if err := p.progress.Add(1); err != nil {
			p.logger.Debug("Failed to update progress", "error", err)
		}
	}
	p.progress.Close()
	return result
}

// ParseFile parses a single statement file. Malformed rows are reported as
// RowErrors and do not abort the rest of the file.
func (p *Parser) ParseFile(path string) ([]types.Transaction, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open statement: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols, err := resolveColumns(header, p.profiles, p.mapping)
	if err != nil {
		return nil, nil, err
	}

	var (
		txns    []types.Transaction
		rowErrs []RowError
		row     = 1
	)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			rowErrs = append(rowErrs, RowError{File: path, Row: row, Err: err})
			continue
		}

		txn, err := p.parseRow(record, cols, path, row)
		if err != nil {
			p.logger.Debug("Skipping malformed row", "file", path, "row", row, "error", err)
			rowErrs = append(rowErrs, RowError{File: path, Row: row, Err: err})
			continue
		}
		txns = append(txns, txn)
	}

	p.logger.Info("Parsed statement", "file", path, "transactions", len(txns), "skipped_rows", len(rowErrs))
	return txns, rowErrs, nil
}

func (p *Parser) parseRow(record []string, cols *columns, file string, row int) (types.Transaction, error) {
	max := cols.date
	if cols.description > max {
		max = cols.description
	}
	if cols.amount > max {
		max = cols.amount
	}
	if cols.direction > max {
		max = cols.direction
	}
	if len(record) <= max {
		return types.Transaction{}, fmt.Errorf("row has %d fields, expected at least %d", len(record), max+1)
	}

	date, err := parseDate(record[cols.date], cols.dateLayouts)
	if err != nil {
		return types.Transaction{}, err
	}

	description := strings.TrimSpace(record[cols.description])
	if description == "" {
		return types.Transaction{}, fmt.Errorf("empty description")
	}

	amount, err := parseAmount(record[cols.amount])
	if err != nil {
		return types.Transaction{}, err
	}
	if cols.direction >= 0 {
		dir := strings.ToUpper(strings.TrimSpace(record[cols.direction]))
		if cols.debitValues[dir] && amount.IsPositive() {
			amount = amount.Neg()
		}
	}

	source := types.Source{File: file, Row: row}
	return types.Transaction{
		Key:         types.TransactionKey(date, description, amount, source),
		Date:        date,
		Description: description,
		MerchantKey: merchant.Key(description),
		Amount:      amount,
		Source:      source,
	}, nil
}

func parseDate(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseAmount strips currency symbols and thousands separators before parsing.
// A parenthesized amount is treated as negative.
func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '£', '$', '€', ',', ' ':
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}
