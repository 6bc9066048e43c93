package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/vendor"
)

// Default caps on a single upload.
const (
	DefaultMaxBytes = 10 << 20
	DefaultMaxRows  = 50_000
	DefaultCurrency = "USD"
)

// Options tunes normalization. Zero values select the defaults.
type Options struct {
	Currency string // used when the file has no currency column
	MaxBytes int
	MaxRows  int
}

// Candidate is a normalized row ready for deduplication.
type Candidate struct {
	Row                   int
	Date                  time.Time
	Description           string
	NormalizedDescription string
	Amount                decimal.Decimal // negative = outflow
	Currency              string
	Balance               decimal.NullDecimal
}

// Result is the outcome of normalizing one file.
type Result struct {
	Candidates []Candidate
	Errors     []RowError
	TotalRows  int // data rows seen, excluding the header and blank rows
	Encoding   string
	Delimiter  rune
	DateFamily DateFamily
	Style      DecimalStyle
}

// ErrorCount is the number of skipped rows.
func (r *Result) ErrorCount() int {
	return len(r.Errors)
}

type rawRow struct {
	line   int
	fields []string
}

// Normalize parses raw CSV bytes into transaction candidates. File-level
// problems return a *FileError; row-level problems are collected in
// Result.Errors and the row is skipped. Identical input yields identical output.
func Normalize(data []byte, opts Options) (*Result, error) {
	opts = withDefaults(opts)

	if len(data) == 0 {
		return nil, &FileError{Kind: KindEmpty, Detail: "file is empty",
			Suggestion: "upload a CSV export with a header row and at least one transaction"}
	}
	if len(data) > opts.MaxBytes {
		return nil, &FileError{Kind: KindTooLarge,
			Detail:     fmt.Sprintf("file is %d bytes, limit is %d", len(data), opts.MaxBytes),
			Suggestion: "split the export into smaller date ranges"}
	}

	text, enc, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	if strings.ContainsRune(text, 0) {
		return nil, &FileError{Kind: KindEncoding, Detail: "file contains binary data",
			Suggestion: "upload the CSV export, not a spreadsheet or PDF"}
	}

	delim, err := detectDelimiter(text)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &FileError{Kind: KindEmpty, Detail: fmt.Sprintf("reading header: %v", err),
			Suggestion: "upload a CSV export with a header row"}
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	res := &Result{Encoding: enc, Delimiter: delim}

	var rows []rawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.TotalRows++
				res.Errors = append(res.Errors, RowError{Row: pe.StartLine, Reason: pe.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: rec})
		if len(rows) > opts.MaxRows {
			return nil, &FileError{Kind: KindTooLarge,
				Detail:     fmt.Sprintf("file has more than %d rows", opts.MaxRows),
				Suggestion: "split the export into smaller date ranges"}
		}
	}
	res.TotalRows += len(rows)

	order := dateOrder(columnValues(rows, cols, FieldDate))
	res.DateFamily = order[0]
	res.Style = inferStyle(columnValues(rows, cols, FieldAmount, FieldDebit, FieldCredit), delim)

	for _, row := range rows {
		c, rowErr := parseRow(row, cols, order, res.Style, opts)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	return res, nil
}

func withDefaults(opts Options) Options {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	return opts
}

func parseRow(row rawRow, cols columnMap, order []DateFamily, style DecimalStyle, opts Options) (Candidate, *RowError) {
	get := func(f Field) string {
		i, ok := cols[f]
		if !ok || i >= len(row.fields) {
			return ""
		}
		return strings.TrimSpace(row.fields[i])
	}

	rawDate := get(FieldDate)
	date, _, ok := parseDate(rawDate, order)
	if !ok {
		return Candidate{}, &RowError{Row: row.line, Field: string(FieldDate), Value: rawDate, Reason: "unrecognized or impossible date"}
	}

	desc := get(FieldDescription)
	if desc == "" {
		return Candidate{}, &RowError{Row: row.line, Field: string(FieldDescription), Reason: "empty description"}
	}

	amount, rowErr := rowAmount(row.line, get, cols, style)
	if rowErr != nil {
		return Candidate{}, rowErr
	}
	if amount.IsZero() {
		return Candidate{}, &RowError{Row: row.line, Field: string(FieldAmount), Value: amount.String(), Reason: "zero amount"}
	}

	c := Candidate{
		Row:                   row.line,
		Date:                  date,
		Description:           desc,
		NormalizedDescription: vendor.Normalize(desc),
		Amount:                amount,
		Currency:              opts.Currency,
	}
	if cur := get(FieldCurrency); cur != "" {
		c.Currency = strings.ToUpper(cur)
	}
	if bal := get(FieldBalance); bal != "" {
		if b, err := ParseAmount(bal, style); err == nil {
			c.Balance = decimal.NullDecimal{Decimal: b, Valid: true}
		}
	}
	return c, nil
}

// rowAmount reads the signed amount, preferring a single amount column and
// falling back to credit minus debit.
func rowAmount(line int, get func(Field) string, cols columnMap, style DecimalStyle) (decimal.Decimal, *RowError) {
	if raw := get(FieldAmount); raw != "" || !cols.usesDebitCredit() {
		amt, err := ParseAmount(raw, style)
		if err != nil {
			return decimal.Zero, &RowError{Row: line, Field: string(FieldAmount), Value: raw, Reason: err.Error()}
		}
		return amt, nil
	}

	rawDebit, rawCredit := get(FieldDebit), get(FieldCredit)
	if rawDebit == "" && rawCredit == "" {
		return decimal.Zero, &RowError{Row: line, Field: string(FieldAmount), Reason: "no debit or credit value"}
	}
	debit, credit := decimal.Zero, decimal.Zero
	var err error
	if rawDebit != "" {
		if debit, err = ParseAmount(rawDebit, style); err != nil {
			return decimal.Zero, &RowError{Row: line, Field: string(FieldDebit), Value: rawDebit, Reason: err.Error()}
		}
	}
	if rawCredit != "" {
		if credit, err = ParseAmount(rawCredit, style); err != nil {
			return decimal.Zero, &RowError{Row: line, Field: string(FieldCredit), Value: rawCredit, Reason: err.Error()}
		}
	}
	return credit.Sub(debit.Abs()), nil
}

func columnValues(rows []rawRow, cols columnMap, fields ...Field) []string {
	var out []string
	for _, f := range fields {
		i, ok := cols[f]
		if !ok {
			continue
		}
		for _, r := range rows {
			if i < len(r.fields) {
				out = append(out, r.fields[i])
			}
		}
	}
	return out
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
