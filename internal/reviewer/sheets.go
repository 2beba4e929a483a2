package reviewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// sheetRows replays fetched spreadsheet values through the rowReader interface.
type sheetRows struct {
	values [][]string
	next   int
}

func (s *sheetRows) Read() ([]string, error) {
	for s.next < len(s.values) {
		row := s.values[s.next]
		s.next++
		// Sheets omits trailing empty cells; a fully empty row is skipped like a
		// blank CSV line.
		if len(row) > 0 {
			return row, nil
		}
	}
	return nil, io.EOF
}

// OpenSheet reads a reviewer table from a Google Sheets range.
func OpenSheet(ctx context.Context, fetcher SheetFetcher, spreadsheetID, cellRange string) (Source, error) {
	values, err := fetcher.FetchValues(ctx, spreadsheetID, cellRange)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: spreadsheet %s", ErrMissingInputTable, spreadsheetID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviewer sheet: %w", err)
	}
	t, err := newTable(&sheetRows{values: values}, nil)
	if err != nil {
		return nil, err
	}
	return t, nil
}
