package store

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

const ignoreHeader = "transaction_key"

// Ignore persists the set of transaction keys excluded from analysis, one key
// per row, preserving the order keys were added in.
type Ignore struct {
	logger *log.Logger
	path   string
	keys   []string
	set    map[string]bool
}

// NewIgnore loads ignored transaction keys from path. A missing or unreadable
// file yields an empty store.
func NewIgnore(path string, logger *log.Logger) *Ignore {
	s := &Ignore{
		logger: logger,
		path:   path,
		set:    make(map[string]bool),
	}
	s.load()
	return s
}

func (s *Ignore) load() {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to open ignore file, starting empty", "path", s.path, "error", err)
		}
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		s.logger.Warn("Failed to parse ignore file, starting empty", "path", s.path, "error", err)
		return
	}

	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == ignoreHeader {
			continue
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		key := record[0]
		if s.set[key] {
			continue
		}
		s.set[key] = true
		s.keys = append(s.keys, key)
	}
}

// IsIgnored reports whether a transaction key is ignored
func (s *Ignore) IsIgnored(key string) bool {
	return s.set[key]
}

// Add marks a transaction key as ignored and persists the change. Adding a
// key that is already ignored is a no-op.
func (s *Ignore) Add(key string) error {
	if s.set[key] {
		return nil
	}
	s.set[key] = true
	s.keys = append(s.keys, key)

	if err := s.save(); err != nil {
		delete(s.set, key)
		s.keys = s.keys[:len(s.keys)-1]
		return err
	}
	return nil
}

// Remove un-ignores a transaction key and persists the change
func (s *Ignore) Remove(key string) error {
	if !s.set[key] {
		return nil
	}
	idx := -1
	for i, k := range s.keys {
		if k == key {
			idx = i
			break
		}
	}
	delete(s.set, key)
	s.keys = append(s.keys[:idx], s.keys[idx+1:]...)

	if err := s.save(); err != nil {
		s.set[key] = true
		s.keys = append(s.keys, "")
		copy(s.keys[idx+1:], s.keys[idx:])
		s.keys[idx] = key
		return err
	}
	return nil
}

// Keys returns the ignored transaction keys in the order they were added
func (s *Ignore) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Ignore) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to write ignore file: %w", err)
	}

	w := csv.NewWriter(f)
	records := [][]string{{ignoreHeader}}
	for _, key := range s.keys {
		records = append(records, []string{key})
	}

	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write ignore file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write ignore file: %w", err)
	}
	return nil
}
