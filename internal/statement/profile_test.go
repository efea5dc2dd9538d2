package statement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`profiles:
  - name: mybank
    date: ["Booking Date"]
    description: ["Reference"]
    amount: ["Amount (GBP)"]
    date_layouts: ["02.01.2006"]
`), 0o644))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "mybank", profiles[0].Name)
	assert.Equal(t, []string{"Booking Date"}, profiles[0].Date)
	assert.Equal(t, []string{"02.01.2006"}, profiles[0].DateLayouts)
}

func TestLoadProfilesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid_yaml",
			content: "profiles: [",
		},
		{
			name: "missing_amount_column",
			content: `profiles:
  - name: broken
    date: ["Date"]
    description: ["Description"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profiles.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadProfiles(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		wantErr  bool
		wantDate int
		wantDesc int
		wantAmt  int
		wantDir  int
	}{
		{
			name:     "classic_layout",
			header:   []string{"Date", "Description", "Value"},
			wantDate: 0, wantDesc: 1, wantAmt: 2, wantDir: -1,
		},
		{
			name:     "case_insensitive_fallback",
			header:   []string{"DATE", "DESCRIPTION", "VALUE"},
			wantDate: 0, wantDesc: 1, wantAmt: 2, wantDir: -1,
		},
		{
			name:     "reordered_columns",
			header:   []string{"Value", "Date", "Description"},
			wantDate: 1, wantDesc: 2, wantAmt: 0, wantDir: -1,
		},
		{
			name:     "directional_layout",
			header:   []string{"Date", "Description", "Amount", "Type"},
			wantDate: 0, wantDesc: 1, wantAmt: 2, wantDir: 3,
		},
		{
			name:    "unrecognized",
			header:  []string{"A", "B", "C"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := resolveColumns(tt.header, DefaultProfiles(), nil)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, cols.date)
			assert.Equal(t, tt.wantDesc, cols.description)
			assert.Equal(t, tt.wantAmt, cols.amount)
			assert.Equal(t, tt.wantDir, cols.direction)
		})
	}
}

func TestResolveColumnsExtraProfileTakesPriority(t *testing.T) {
	extra := []Profile{{
		Name:        "mybank",
		Date:        []string{"Date"},
		Description: []string{"Description"},
		Amount:      []string{"Value"},
		DateLayouts: []string{"02.01.2006"},
	}}
	profiles := append(extra, DefaultProfiles()...)

	cols, err := resolveColumns([]string{"Date", "Description", "Value"}, profiles, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"02.01.2006"}, cols.dateLayouts)
}
