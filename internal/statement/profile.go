package statement

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes one bank's export layout: the candidate header names for
// each required column, optionally a direction column for exports that list
// unsigned amounts, and the date layouts the bank uses. Profiles are tried in
// registration order; within a profile, exact header matches are tried before
// case-insensitive ones.
type Profile struct {
	Name        string   `yaml:"name"`
	Date        []string `yaml:"date"`
	Description []string `yaml:"description"`
	Amount      []string `yaml:"amount"`
	Direction   []string `yaml:"direction,omitempty"`
	DebitValues []string `yaml:"debit_values,omitempty"`
	DateLayouts []string `yaml:"date_layouts,omitempty"`
}

// Mapping is a user-supplied explicit column mapping, the last resort when no
// profile matches a header row.
type Mapping struct {
	Date        string
	Description string
	Amount      string
	Direction   string
	DebitValue  string
}

// defaultDateLayouts are tried in order when a profile does not name its own
var defaultDateLayouts = []string{
	"02 Jan 2006",
	"2006-01-02",
	"02/01/2006",
}

// DefaultProfiles returns the built-in export layouts
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:        "classic",
			Date:        []string{"Date"},
			Description: []string{"Description"},
			Amount:      []string{"Value"},
		},
		{
			Name:        "generic-directional",
			Date:        []string{"Date", "Transaction Date"},
			Description: []string{"Description", "Details", "Narrative"},
			Amount:      []string{"Amount", "Value"},
			Direction:   []string{"Type", "Direction", "Debit/Credit"},
			DebitValues: []string{"DEBIT", "DR", "D", "OUT"},
		},
		{
			Name:        "generic",
			Date:        []string{"Date", "Transaction Date", "Posting Date"},
			Description: []string{"Description", "Details", "Narrative", "Payee"},
			Amount:      []string{"Amount", "Value", "Transaction Amount"},
		},
	}
}

// LoadProfiles reads extra profiles from a YAML file. Loaded profiles take
// priority over the built-in ones.
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	for _, p := range doc.Profiles {
		if p.Name == "" || len(p.Date) == 0 || len(p.Description) == 0 || len(p.Amount) == 0 {
			return nil, fmt.Errorf("profile %q must name date, description and amount columns", p.Name)
		}
	}
	return doc.Profiles, nil
}

// columns holds resolved column indexes for one file's header row
type columns struct {
	date        int
	description int
	amount      int
	direction   int // -1 when the layout has signed amounts
	debitValues map[string]bool
	dateLayouts []string
}

// resolveColumns finds the column layout of a header row. Matchers are tried
// in priority order: each profile's exact header names, then the same names
// case-insensitively, then the explicit user mapping if one was supplied.
func resolveColumns(header []string, profiles []Profile, explicit *Mapping) (*columns, error) {
	index := func(name string, fold bool) int {
		for i, h := range header {
			h = strings.TrimSpace(h)
			if h == name || (fold && strings.EqualFold(h, name)) {
				return i
			}
		}
		return -1
	}
	first := func(names []string, fold bool) int {
		for _, n := range names {
			if i := index(n, fold); i >= 0 {
				return i
			}
		}
		return -1
	}

	for _, fold := range []bool{false, true} {
		for _, p := range profiles {
			c := &columns{
				date:        first(p.Date, fold),
				description: first(p.Description, fold),
				amount:      first(p.Amount, fold),
				direction:   -1,
				dateLayouts: p.DateLayouts,
			}
			if c.date < 0 || c.description < 0 || c.amount < 0 {
				continue
			}
			if len(p.Direction) > 0 {
				c.direction = first(p.Direction, fold)
				if c.direction >= 0 {
					c.debitValues = make(map[string]bool, len(p.DebitValues))
					for _, v := range p.DebitValues {
						c.debitValues[strings.ToUpper(v)] = true
					}
				}
			}
			if len(c.dateLayouts) == 0 {
				c.dateLayouts = defaultDateLayouts
			}
			return c, nil
		}
	}

	if explicit != nil {
		c := &columns{
			date:        index(explicit.Date, true),
			description: index(explicit.Description, true),
			amount:      index(explicit.Amount, true),
			direction:   -1,
			dateLayouts: defaultDateLayouts,
		}
		if c.date < 0 || c.description < 0 || c.amount < 0 {
			return nil, fmt.Errorf("explicit column mapping does not match header %v: %w", header, ErrNoLayout)
		}
		if explicit.Direction != "" {
			c.direction = index(explicit.Direction, true)
			c.debitValues = map[string]bool{strings.ToUpper(explicit.DebitValue): true}
		}
		return c, nil
	}

	return nil, ErrNoLayout
}
