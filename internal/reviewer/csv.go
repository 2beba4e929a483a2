package reviewer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OpenCSV opens a comma-separated reviewer table. A leading UTF-8 byte order
// mark, as written by spreadsheet exports, is stripped before parsing.
// Quotes inside unquoted fields are kept literally, so a name such as
// Jane "JD" Doe reads as written.
func OpenCSV(path string) (Source, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingInputTable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open reviewer table: %w", err)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	r := csv.NewReader(transform.NewReader(f, decoder))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	t, err := newTable(r, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}
