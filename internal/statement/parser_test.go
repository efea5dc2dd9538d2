package statement

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStatement(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestParseFile(t *testing.T) {
	path := writeStatement(t, "january.csv",
		"Date,Description,Value\n"+
			"02 Jan 2024,\"CARD PAYMENT, TESCO STORES 1234\",-42.10\n"+
			"05 Jan 2024,\"BACS, ACME PAYROLL\",2500.00\n")

	parser := NewParser(testLogger())
	txns, rowErrs, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "CARD PAYMENT, TESCO STORES 1234", first.Description)
	assert.Equal(t, "tesco stores", first.MerchantKey)
	assert.Equal(t, "-42.1", first.Amount.String())
	assert.False(t, first.Credit())
	assert.NotEmpty(t, first.Key)
	assert.Equal(t, path, first.Source.File)
	assert.Equal(t, 2, first.Source.Row)

	second := txns[1]
	assert.Equal(t, "acme payroll", second.MerchantKey)
	assert.True(t, second.Credit())
	assert.NotEqual(t, first.Key, second.Key)
}

func TestParseFileDateLayouts(t *testing.T) {
	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{
			name: "day_month_name_year",
			date: "02 Jan 2024",
			want: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "iso",
			date: "2024-01-02",
			want: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day_month_year_slashes",
			date: "02/01/2024",
			want: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStatement(t, "statement.csv",
				"Date,Description,Value\n"+tt.date+",COFFEE,-3.00\n")

			txns, rowErrs, err := NewParser(testLogger()).ParseFile(path)
			require.NoError(t, err)
			require.Empty(t, rowErrs)
			require.Len(t, txns, 1)
			assert.Equal(t, tt.want, txns[0].Date)
		})
	}
}

func TestParseFileAmountCleaning(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "plain", amount: "-42.10", want: "-42.1"},
		{name: "currency_symbol", amount: "£1,250.00", want: "1250"},
		{name: "parenthesized_negative", amount: "(15.50)", want: "-15.5"},
		{name: "embedded_spaces", amount: "1 000.25", want: "1000.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStatement(t, "statement.csv",
				"Date,Description,Value\n2024-01-02,SHOP,\""+tt.amount+"\"\n")

			txns, rowErrs, err := NewParser(testLogger()).ParseFile(path)
			require.NoError(t, err)
			require.Empty(t, rowErrs)
			require.Len(t, txns, 1)
			assert.Equal(t, tt.want, txns[0].Amount.String())
		})
	}
}

func TestParseFileDirectionColumn(t *testing.T) {
	path := writeStatement(t, "statement.csv",
		"Date,Description,Amount,Type\n"+
			"2024-01-02,SHOP,42.10,DEBIT\n"+
			"2024-01-05,PAYROLL,2500.00,CREDIT\n")

	txns, rowErrs, err := NewParser(testLogger()).ParseFile(path)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, txns, 2)
	assert.Equal(t, "-42.1", txns[0].Amount.String())
	assert.Equal(t, "2500", txns[1].Amount.String())
}

func TestParseFileMalformedRows(t *testing.T) {
	path := writeStatement(t, "statement.csv",
		"Date,Description,Value\n"+
			"not a date,SHOP,-1.00\n"+
			"2024-01-02,SHOP,not-a-number\n"+
			"2024-01-02,,-1.00\n"+
			"2024-01-03,GOOD ROW,-5.00\n")

	txns, rowErrs, err := NewParser(testLogger()).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "GOOD ROW", txns[0].Description)
	require.Len(t, rowErrs, 3)
	assert.Equal(t, 2, rowErrs[0].Row)
	assert.Equal(t, 3, rowErrs[1].Row)
	assert.Equal(t, 4, rowErrs[2].Row)
}

func TestParseFileNoLayout(t *testing.T) {
	path := writeStatement(t, "statement.csv",
		"Foo,Bar,Baz\n1,2,3\n")

	_, _, err := NewParser(testLogger()).ParseFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLayout)
}

func TestParseFileExplicitMapping(t *testing.T) {
	path := writeStatement(t, "statement.csv",
		"When,What,How Much\n2024-01-02,SHOP,-9.99\n")

	parser := NewParser(testLogger(), WithMapping(&Mapping{
		Date:        "When",
		Description: "What",
		Amount:      "How Much",
	}))
	txns, rowErrs, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, txns, 1)
	assert.Equal(t, "-9.99", txns[0].Amount.String())
}

func TestParseFiles(t *testing.T) {
	good := writeStatement(t, "good.csv",
		"Date,Description,Value\n2024-01-02,SHOP,-1.00\n")
	partial := writeStatement(t, "partial.csv",
		"Date,Description,Value\nbad,SHOP,-1.00\n2024-01-03,SHOP,-2.00\n")

	result := NewParser(testLogger()).ParseFiles(good, partial, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Len(t, result.Transactions, 2)
	assert.Len(t, result.RowErrors, 1)
	require.Len(t, result.FileErrors, 1)
	assert.Contains(t, result.FileErrors[0].File, "missing.csv")
}

type recordingProgress struct {
	described []string
	added     int
	closed    bool
}

func (p *recordingProgress) Describe(name string) { p.described = append(p.described, name) }
func (p *recordingProgress) Add(n int) error      { p.added += n; return nil }
func (p *recordingProgress) Close()               { p.closed = true }

func TestParseFilesProgress(t *testing.T) {
	first := writeStatement(t, "january.csv",
		"Date,Description,Value\n2024-01-02,SHOP,-1.00\n")
	second := writeStatement(t, "february.csv",
		"Date,Description,Value\n2024-02-02,SHOP,-2.00\n")

	progress := &recordingProgress{}
	NewParser(testLogger(), WithProgress(progress)).ParseFiles(first, second)

	assert.Equal(t, []string{"january.csv", "february.csv"}, progress.described)
	assert.Equal(t, 2, progress.added)
	assert.True(t, progress.closed)
}

func TestParseFileDeterministicKeys(t *testing.T) {
	content := "Date,Description,Value\n2024-01-02,SHOP,-1.00\n"
	path := writeStatement(t, "statement.csv", content)

	parser := NewParser(testLogger())
	first, _, err := parser.ParseFile(path)
	require.NoError(t, err)
	second, _, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Key, second[0].Key)
}
