package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
)

// unmappedPlaceholder marks a merchant key that has been seen but not yet
// assigned a category. Placeholder rows load as unmapped keys.
const unmappedPlaceholder = "None"

const categoryHeader = "merchant_key"

// Category persists merchant key to category assignments in a CSV file.
// Every mutation rewrites the file so the on-disk state always matches
// memory.
type Category struct {
	logger   *log.Logger
	path     string
	assigned map[string]string
	unmapped map[string]bool
}

// NewCategory loads category assignments from path. A missing or unreadable
// file yields an empty store; malformed rows are skipped with a warning.
func NewCategory(path string, logger *log.Logger) *Category {
	s := &Category{
		logger:   logger,
		path:     path,
		assigned: make(map[string]string),
		unmapped: make(map[string]bool),
	}
	s.load()
	return s
}

func (s *Category) load() {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to open category file, starting empty", "path", s.path, "error", err)
		}
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		s.logger.Warn("Failed to parse category file, starting empty", "path", s.path, "error", err)
		return
	}

	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == categoryHeader {
			continue
		}
		if len(record) < 2 || record[0] == "" {
			s.logger.Warn("Skipping malformed category row", "path", s.path, "row", i+1)
			continue
		}
		key, category := record[0], record[1]
		if category == unmappedPlaceholder || category == "" {
			if _, ok := s.assigned[key]; !ok {
				s.unmapped[key] = true
			}
			continue
		}
		// last write wins on duplicate keys
		s.assigned[key] = category
		delete(s.unmapped, key)
	}
}

// Lookup returns the category assigned to a merchant key
func (s *Category) Lookup(key string) (string, bool) {
	category, ok := s.assigned[key]
	return category, ok
}

// Assign maps a merchant key to a category and persists the change
func (s *Category) Assign(key, category string) error {
	prev, hadPrev := s.assigned[key]
	wasUnmapped := s.unmapped[key]

	s.assigned[key] = category
	delete(s.unmapped, key)

	if err := s.save(); err != nil {
		if hadPrev {
			s.assigned[key] = prev
		} else {
			delete(s.assigned, key)
		}
		if wasUnmapped {
			s.unmapped[key] = true
		}
		return err
	}
	return nil
}

// AssignBulk applies every assignment and persists once. If the save fails
// the in-memory state is reverted, so the change is all or nothing.
func (s *Category) AssignBulk(assignments map[string]string) error {
	prevAssigned := make(map[string]string, len(s.assigned))
	for k, v := range s.assigned {
		prevAssigned[k] = v
	}
	prevUnmapped := make(map[string]bool, len(s.unmapped))
	for k := range s.unmapped {
		prevUnmapped[k] = true
	}

	for key, category := range assignments {
		s.assigned[key] = category
		delete(s.unmapped, key)
	}

	if err := s.save(); err != nil {
		s.assigned = prevAssigned
		s.unmapped = prevUnmapped
		return err
	}
	return nil
}

// MarkUnmapped records merchant keys that were seen but have no category yet,
// so they survive restarts as review candidates. Already assigned keys are
// left alone.
func (s *Category) MarkUnmapped(keys []string) error {
	added := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := s.assigned[key]; ok {
			continue
		}
		if s.unmapped[key] {
			continue
		}
		s.unmapped[key] = true
		added = append(added, key)
	}
	if len(added) == 0 {
		return nil
	}

	if err := s.save(); err != nil {
		for _, key := range added {
			delete(s.unmapped, key)
		}
		return err
	}
	return nil
}

// Rename moves every key assigned to old onto the new category name. It
// returns the number of keys moved.
func (s *Category) Rename(old, new string) (int, error) {
	moved := make([]string, 0)
	for key, category := range s.assigned {
		if category == old {
			moved = append(moved, key)
		}
	}
	if len(moved) == 0 {
		return 0, nil
	}

	for _, key := range moved {
		s.assigned[key] = new
	}
	if err := s.save(); err != nil {
		for _, key := range moved {
			s.assigned[key] = old
		}
		return 0, err
	}
	return len(moved), nil
}

// UnmappedKeys returns the merchant keys without a category, sorted
func (s *Category) UnmappedKeys() []string {
	keys := make([]string, 0, len(s.unmapped))
	for key := range s.unmapped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Categories returns the distinct assigned category names, sorted
func (s *Category) Categories() []string {
	seen := make(map[string]bool)
	for _, category := range s.assigned {
		seen[category] = true
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// All returns a copy of every merchant key to category assignment
func (s *Category) All() map[string]string {
	out := make(map[string]string, len(s.assigned))
	for k, v := range s.assigned {
		out[k] = v
	}
	return out
}

func (s *Category) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to write category file: %w", err)
	}

	w := csv.NewWriter(f)
	records := [][]string{{categoryHeader, "category"}}

	keys := make([]string, 0, len(s.assigned)+len(s.unmapped))
	for key := range s.assigned {
		keys = append(keys, key)
	}
	for key := range s.unmapped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		category, ok := s.assigned[key]
		if !ok {
			category = unmappedPlaceholder
		}
		records = append(records, []string{key, category})
	}

	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write category file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write category file: %w", err)
	}
	return nil
}
