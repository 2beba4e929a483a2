package gworkspace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
)

// FetchValues reads cellRange from a spreadsheet and returns every cell as
// its formatted string value.
func (c *Client) FetchValues(ctx context.Context, spreadsheetID, cellRange string) ([][]string, error) {
	resp, err := c.Sheets.Spreadsheets.Values.Get(spreadsheetID, cellRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("spreadsheet %s: %w", spreadsheetID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to fetch sheet values: %w", err)
	}
	return cellsToStrings(resp.Values), nil
}

func cellsToStrings(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		rows = append(rows, cells)
	}
	return rows
}
