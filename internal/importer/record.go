package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names of the standard import schema.
const (
	ColDate    = "Date"
	ColAccount = "Account"
	ColAmount  = "Amount"
	ColPayee   = "Payee"
	ColCode    = "Code"
	ColMemo    = "Memo"
	ColKeyword = "Keyword"
	ColIgnore  = "Ignore"
)

// IgnoreValue marks a row to skip in the Ignore column.
const IgnoreValue = "yes"

// memoSeparator joins Memo, Memo1, Memo2, ...
const memoSeparator = " - "

var requiredColumns = []string{ColDate, ColAccount, ColAmount}

// Record is one data row keyed by header name. Err is set when the row could
// not be read as CSV; such a record has no fields.
type Record struct {
	Line   int
	Fields map[string]string
	Err    error
	header []string
}

// NewRecord builds a record from a header and its values.
func NewRecord(line int, header, values []string) Record {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(values) {
			fields[h] = strings.TrimSpace(values[i])
		} else {
			fields[h] = ""
		}
	}
	return Record{Line: line, Fields: fields, header: header}
}

// Get returns the value of col, or "" if the column is absent.
func (r Record) Get(col string) string {
	return r.Fields[col]
}

// Value returns the value of col, or def when absent or empty.
func (r Record) Value(col, def string) string {
	if v := r.Fields[col]; v != "" {
		return v
	}
	return def
}

// Has reports whether col is present and non-empty.
func (r Record) Has(col string) bool {
	return r.Fields[col] != ""
}

// Ignored reports whether the row is flagged to skip.
func (r Record) Ignored() bool {
	return r.Fields[ColIgnore] == IgnoreValue
}

// IsBlank reports whether every field is empty.
func (r Record) IsBlank() bool {
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// Memo assembles the transaction memo: an optional "(Code) " prefix followed
// by Memo, Memo1, Memo2, ... joined with " - ". Continuations stop at the
// first missing or empty MemoN.
func (r Record) Memo() string {
	var b strings.Builder
	if code := r.Get(ColCode); code != "" {
		b.WriteString("(" + code + ") ")
	}
	b.WriteString(r.Get(ColMemo))
	for i := 1; ; i++ {
		next := r.Get(ColMemo + strconv.Itoa(i))
		if next == "" {
			break
		}
		b.WriteString(memoSeparator)
		b.WriteString(next)
	}
	return strings.TrimSpace(b.String())
}

// String renders the row in header order for logs.
func (r Record) String() string {
	parts := make([]string, 0, len(r.header))
	for _, h := range r.header {
		parts = append(parts, h+"="+r.Fields[h])
	}
	return strings.Join(parts, ", ")
}

// StandardParser reads the header-based import schema.
type StandardParser struct{}

// Format returns the parser name.
func (p *StandardParser) Format() string { return "standard" }

// Parse reads a UTF-8 CSV (with or without BOM). The first row is the header;
// blank lines are skipped and fields are trimmed.
func (p *StandardParser) Parse(r io.Reader) ([]Record, error) {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []Record
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if rec, ok := malformedRecord(err); ok {
			records = append(records, rec)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading import CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, NewRecord(line, header, values))
	}
	return records, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return cr
}

// malformedRecord turns a per-row CSV parse error into a Record carrying it.
// Any other error is left to the caller.
func malformedRecord(err error) (Record, bool) {
	var pe *csv.ParseError
	if !errors.As(err, &pe) {
		return Record{}, false
	}
	return Record{Line: pe.StartLine, Err: fmt.Errorf("%w: %w", ErrMalformedRow, pe.Err)}, true
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrInvalidHeader, strings.Join(missing, ", "))
	}
	return nil
}

// Filter splits records into rows to convert and counts of ignored and blank rows.
func Filter(records []Record) (kept []Record, ignored, blank int) {
	for _, rec := range records {
		switch {
		case rec.Err != nil:
			kept = append(kept, rec)
		case rec.Ignored():
			ignored++
		case rec.IsBlank():
			blank++
		default:
			kept = append(kept, rec)
		}
	}
	return kept, ignored, blank
}
