package reviewer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviewer.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write reviewer table: %v", err)
	}
	return path
}

// drain reads src to the end, splitting good records from row errors.
func drain(t *testing.T, src Source) ([]Record, []int) {
	t.Helper()
	var records []Record
	var badRows []int
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return records, badRows
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			badRows = append(badRows, rowErr.Row)
			continue
		}
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		records = append(records, rec)
	}
}

func TestOpenCSV(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     []Record
		wantBad  []int
		wantErr  error
		wantNone bool
	}{
		{
			name:    "basic table",
			content: "Name,Number\nJane Doe,3\nTaro Yamada,1\n",
			want: []Record{
				{Name: "Jane Doe", Count: "3", Row: 1},
				{Name: "Taro Yamada", Count: "1", Row: 2},
			},
		},
		{
			name:    "extra columns in any order",
			content: "Email,Number,Name\njane@example.com,4,Jane Doe\n",
			want:    []Record{{Name: "Jane Doe", Count: "4", Row: 1}},
		},
		{
			name:    "byte order mark and padding",
			content: "\ufeffName, Number\n  Jane Doe , 2 \n",
			want:    []Record{{Name: "Jane Doe", Count: "2", Row: 1}},
		},
		{
			name:    "quoted name with comma",
			content: "Name,Number\n\"Doe, Jane\",5\n",
			want:    []Record{{Name: "Doe, Jane", Count: "5", Row: 1}},
		},
		{
			name:    "duplicate names kept in order",
			content: "Name,Number\nJane Doe,1\nJane Doe,2\n",
			want: []Record{
				{Name: "Jane Doe", Count: "1", Row: 1},
				{Name: "Jane Doe", Count: "2", Row: 2},
			},
		},
		{
			name:    "short and empty-name rows are row errors",
			content: "Name,Number\nJane Doe\n,3\nTaro Yamada,1\n",
			want:    []Record{{Name: "Taro Yamada", Count: "1", Row: 3}},
			wantBad: []int{1, 2},
		},
		{
			name:    "bare quotes in a name",
			content: "Name,Number\nJane \"JD\" Doe,3\nTaro Yamada,1\n",
			want: []Record{
				{Name: `Jane "JD" Doe`, Count: "3", Row: 1},
				{Name: "Taro Yamada", Count: "1", Row: 2},
			},
		},
		{
			name:    "quote inside a quoted field",
			content: "Name,Number\n\"Jane \"JD\" Doe\",3\nTaro Yamada,1\n",
			want: []Record{
				{Name: `Jane "JD" Doe`, Count: "3", Row: 1},
				{Name: "Taro Yamada", Count: "1", Row: 2},
			},
		},
		{
			name:     "empty file",
			content:  "",
			wantNone: true,
		},
		{
			name:    "missing Number column",
			content: "Name,Papers\nJane Doe,3\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "missing Name column",
			content: "Reviewer,Number\nJane Doe,3\n",
			wantErr: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := OpenCSV(writeTable(t, tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("OpenCSV() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenCSV() failed: %v", err)
			}
			defer src.Close()

			got, bad := drain(t, src)
			if tt.wantNone {
				if len(got) != 0 || len(bad) != 0 {
					t.Fatalf("expected no rows, got %v / %v", got, bad)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBad, bad); diff != "" {
				t.Errorf("bad rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// scriptedRows replays rows and errors in order, then io.EOF.
type scriptedRows struct {
	steps []scriptedRow
}

type scriptedRow struct {
	fields []string
	err    error
}

func (s *scriptedRows) Read() ([]string, error) {
	if len(s.steps) == 0 {
		return nil, io.EOF
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.fields, step.err
}

func TestTable_ParseErrorIsRowError(t *testing.T) {
	rows := &scriptedRows{steps: []scriptedRow{
		{fields: []string{"Name", "Number"}},
		{err: &csv.ParseError{StartLine: 2, Line: 2, Column: 6, Err: csv.ErrBareQuote}},
		{fields: []string{"Taro Yamada", "1"}},
	}}
	src, err := newTable(rows, nil)
	if err != nil {
		t.Fatalf("newTable() failed: %v", err)
	}

	got, bad := drain(t, src)
	if diff := cmp.Diff([]Record{{Name: "Taro Yamada", Count: "1", Row: 2}}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, bad); diff != "" {
		t.Errorf("bad rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_ReadFailureEndsStream(t *testing.T) {
	rows := &scriptedRows{steps: []scriptedRow{
		{fields: []string{"Name", "Number"}},
		{err: errors.New("connection reset")},
	}}
	src, err := newTable(rows, nil)
	if err != nil {
		t.Fatalf("newTable() failed: %v", err)
	}

	_, err = src.Next()
	var rowErr *RowError
	if err == nil || errors.As(err, &rowErr) {
		t.Errorf("Next() error = %v, want a stream error", err)
	}
}

func TestOpenCSV_MissingFile(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrMissingInputTable) {
		t.Errorf("OpenCSV() error = %v, want ErrMissingInputTable", err)
	}
}

type fakeSheets struct {
	values    [][]string
	err       error
	gotID     string
	gotRange  string
	callCount int
}

func (f *fakeSheets) FetchValues(ctx context.Context, spreadsheetID, cellRange string) ([][]string, error) {
	f.callCount++
	f.gotID = spreadsheetID
	f.gotRange = cellRange
	return f.values, f.err
}

func TestOpen_Sheets(t *testing.T) {
	sheets := &fakeSheets{values: [][]string{
		{"Name", "Number"},
		{"Jane Doe", "3"},
		{},
		{"Taro Yamada", "1"},
	}}

	src, err := Open(context.Background(), "sheets:abc123#Reviewers!A1:B50", sheets)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer src.Close()

	if sheets.gotID != "abc123" || sheets.gotRange != "Reviewers!A1:B50" {
		t.Errorf("fetched %q %q, want abc123 Reviewers!A1:B50", sheets.gotID, sheets.gotRange)
	}

	got, bad := drain(t, src)
	want := []Record{
		{Name: "Jane Doe", Count: "3", Row: 1},
		{Name: "Taro Yamada", Count: "1", Row: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if len(bad) != 0 {
		t.Errorf("unexpected bad rows: %v", bad)
	}
}

func TestOpen_SheetsErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, "sheets:abc", nil); !errors.Is(err, ErrSheetsUnavailable) {
		t.Errorf("Open() without a fetcher error = %v, want ErrSheetsUnavailable", err)
	}

	if _, err := Open(ctx, "sheets:#A:B", &fakeSheets{}); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Open() with an empty spreadsheet id error = %v, want ErrInvalidReference", err)
	}

	missing := &fakeSheets{err: fmt.Errorf("spreadsheet abc: %w", os.ErrNotExist)}
	if _, err := Open(ctx, "sheets:abc", missing); !errors.Is(err, ErrMissingInputTable) {
		t.Errorf("Open() error = %v, want ErrMissingInputTable", err)
	}
}

func TestParseSheetRef(t *testing.T) {
	tests := []struct {
		ref       string
		wantID    string
		wantRange string
	}{
		{ref: "sheets:abc", wantID: "abc", wantRange: "A:Z"},
		{ref: "sheets:abc#Sheet2", wantID: "abc", wantRange: "Sheet2"},
		{ref: "sheets: abc #A1:C9", wantID: "abc", wantRange: "A1:C9"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, rng := ParseSheetRef(tt.ref)
			if id != tt.wantID || rng != tt.wantRange {
				t.Errorf("ParseSheetRef(%q) = %q, %q; want %q, %q", tt.ref, id, rng, tt.wantID, tt.wantRange)
			}
		})
	}
}
