package statement

import (
	"errors"
	"fmt"
)

// ErrNoLayout is reported when a file's header row has no recognizable
// description, amount and date columns under any known profile.
var ErrNoLayout = errors.New("no recognizable description/amount/date columns")

// ParseError indicates a whole statement file could not be imported.
// Other files in the same import still proceed.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowError indicates a single malformed row that was skipped. The rest of
// the file is still imported.
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
