// Package auditlog appends operator-visible records of every state change
// and query to a CSV file.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Actors.
const (
	ActorUser   = "user"
	ActorSystem = "system"
)

// Actions.
const (
	ActionImport      = "import_csv"
	ActionCorrect     = "correct_transaction"
	ActionRuleCreate  = "create_rule"
	ActionRuleDelete  = "delete_rule"
	ActionRulePromote = "promote_memory_rule"
	ActionPatterns    = "detect_patterns"
	ActionForecast    = "run_forecast"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp     time.Time
	Actor         string
	Action        string
	Details       string
	TransactionID string
	AccountID     string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,actor,action,details,transaction_id,account_id"

// FileName is the log file name inside the log directory.
const FileName = "audit-log.csv"

const (
	numFields        = 6
	colTimestamp     = 0
	colActor         = 1
	colAction        = 2
	colDetails       = 3
	colTransactionID = 4
	colAccountID     = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colTransactionID] = e.TransactionID
	row[colAccountID] = e.AccountID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp:     ts,
		Actor:         record[colActor],
		Action:        record[colAction],
		Details:       record[colDetails],
		TransactionID: record[colTransactionID],
		AccountID:     record[colAccountID],
	}, nil
}

// Log appends to <dir>/audit-log.csv. It is safe for concurrent use within
// one process.
type Log struct {
	mu  sync.Mutex
	dir string
}

// New returns a Log writing under dir.
func New(dir string) *Log {
	return &Log{dir: dir}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := l.Path()
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries. It returns nil if the file does not exist.
func (l *Log) Read() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
