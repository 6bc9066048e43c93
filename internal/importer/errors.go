package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedFile is matched by every file-level rejection.
var ErrMalformedFile = errors.New("malformed file")

// ErrMissingRequiredColumns is matched when the header lacks required fields.
var ErrMissingRequiredColumns = errors.New("missing required columns")

// FileErrorKind classifies why a whole file was rejected.
type FileErrorKind string

const (
	KindEmpty          FileErrorKind = "empty"
	KindTooLarge       FileErrorKind = "too_large"
	KindEncoding       FileErrorKind = "encoding"
	KindDelimiter      FileErrorKind = "delimiter"
	KindMissingColumns FileErrorKind = "missing_columns"
)

// FileError rejects an entire upload with a user-facing reason and fix.
type FileError struct {
	Kind       FileErrorKind
	Detail     string
	Suggestion string
	Missing    []string // set for KindMissingColumns
}

func (e *FileError) Error() string {
	msg := fmt.Sprintf("malformed file (%s): %s", e.Kind, e.Detail)
	if e.Suggestion != "" {
		msg += "; " + e.Suggestion
	}
	return msg
}

// Is matches ErrMalformedFile, and ErrMissingRequiredColumns for missing columns.
func (e *FileError) Is(target error) bool {
	switch target {
	case ErrMalformedFile:
		return true
	case ErrMissingRequiredColumns:
		return e.Kind == KindMissingColumns
	}
	return false
}

func missingColumns(missing []string, header []string) *FileError {
	return &FileError{
		Kind:    KindMissingColumns,
		Detail:  fmt.Sprintf("missing %s (found columns: %s)", strings.Join(missing, ", "), strings.Join(header, ", ")),
		Missing: missing,
		Suggestion: "export a CSV with a date column, a description column, " +
			"and either an amount column or separate debit and credit columns",
	}
}

// RowError records a single row that was skipped.
type RowError struct {
	Row    int // 1-based line in the file, header is row 1
	Field  string
	Value  string
	Reason string
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
}
