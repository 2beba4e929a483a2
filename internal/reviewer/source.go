// Package reviewer reads reviewer records from a header-keyed table.
//
// Tables come either from a CSV file on disk or from a Google Sheets range
// referenced as "sheets:<spreadsheet-id>[#<range>]". Both are exposed through
// the same Source iterator so the generator never knows which one it reads.
package reviewer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Header keys every reviewer table must carry.
const (
	NameColumn  = "Name"
	CountColumn = "Number"
)

// SheetsScheme prefixes a reviewer table reference that points to Google Sheets.
const SheetsScheme = "sheets:"

var (
	// ErrMissingInputTable is returned when the reviewer table cannot be found.
	ErrMissingInputTable = errors.New("reviewer table not found")

	// ErrMissingColumn is returned when the header lacks Name or Number.
	ErrMissingColumn = errors.New("reviewer table is missing a required column")

	// ErrSheetsUnavailable is returned for a sheets: reference when no
	// SheetFetcher is configured.
	ErrSheetsUnavailable = errors.New("reading a Google Sheet requires service account credentials")

	// ErrInvalidReference is returned for a malformed sheets: reference.
	ErrInvalidReference = errors.New("invalid sheets reference")
)

// Record is one row of the reviewer table.
type Record struct {
	Name  string `json:"name"`
	Count string `json:"count"`
	// Row is the 1-based data row, header excluded.
	Row int `json:"row"`
}

// RowError reports a single unusable row. The rest of the table stays readable.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Source yields reviewer records in table order.
// Next returns io.EOF once the table is exhausted. A *RowError concerns only
// that row; any other error ends the stream.
type Source interface {
	Next() (Record, error)
	Close() error
}

// SheetFetcher reads a range of cell values from a spreadsheet. A spreadsheet
// that does not exist must be reported with an error wrapping os.ErrNotExist.
type SheetFetcher interface {
	FetchValues(ctx context.Context, spreadsheetID, cellRange string) ([][]string, error)
}

// Open resolves ref to a Source. sheets may be nil when ref is a file path.
func Open(ctx context.Context, ref string, sheets SheetFetcher) (Source, error) {
	if !strings.HasPrefix(ref, SheetsScheme) {
		return OpenCSV(ref)
	}
	if sheets == nil {
		return nil, fmt.Errorf("%w: %s", ErrSheetsUnavailable, ref)
	}
	id, cellRange := ParseSheetRef(ref)
	if id == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return OpenSheet(ctx, sheets, id, cellRange)
}

// ParseSheetRef splits "sheets:<id>#<range>" into its parts. The range
// defaults to the first sheet's columns A through Z.
func ParseSheetRef(ref string) (id, cellRange string) {
	rest := strings.TrimPrefix(ref, SheetsScheme)
	id, cellRange, _ = strings.Cut(rest, "#")
	if cellRange == "" {
		cellRange = "A:Z"
	}
	return strings.TrimSpace(id), cellRange
}

// rowReader is satisfied by *csv.Reader and by sheetRows.
type rowReader interface {
	Read() ([]string, error)
}

// table maps rows from a rowReader onto Records using the header row.
type table struct {
	rows     rowReader
	closer   io.Closer
	nameIdx  int
	countIdx int
	row      int
	empty    bool
}

func newTable(rows rowReader, closer io.Closer) (*table, error) {
	header, err := rows.Read()
	if errors.Is(err, io.EOF) {
		return &table{rows: rows, closer: closer, empty: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	t := &table{rows: rows, closer: closer, nameIdx: -1, countIdx: -1}
	for i, key := range header {
		switch strings.TrimSpace(key) {
		case NameColumn:
			if t.nameIdx < 0 {
				t.nameIdx = i
			}
		case CountColumn:
			if t.countIdx < 0 {
				t.countIdx = i
			}
		}
	}
	if t.nameIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, NameColumn)
	}
	if t.countIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, CountColumn)
	}
	return t, nil
}

func (t *table) Next() (Record, error) {
	if t.empty {
		return Record{}, io.EOF
	}
	fields, err := t.rows.Read()
	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}
	t.row++
	// csv.Reader resumes at the next record after a parse error.
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return Record{Row: t.row}, &RowError{Row: t.row, Err: err}
	}
	if err != nil {
		return Record{Row: t.row}, fmt.Errorf("failed to read reviewer table: %w", err)
	}

	rec := Record{Row: t.row}
	if t.nameIdx >= len(fields) || t.countIdx >= len(fields) {
		return rec, &RowError{Row: t.row, Err: fmt.Errorf("expected at least %d fields, got %d", max(t.nameIdx, t.countIdx)+1, len(fields))}
	}
	rec.Name = strings.TrimSpace(fields[t.nameIdx])
	rec.Count = strings.TrimSpace(fields[t.countIdx])
	if rec.Name == "" {
		return rec, &RowError{Row: t.row, Err: errors.New("empty reviewer name")}
	}
	return rec, nil
}

func (t *table) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
