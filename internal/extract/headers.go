package extract

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/parsebill/ratesheet/internal/billing"
)

// inferHeader decides whether the first row of a table names its columns.
// It does when at least one cell is alphabetic rather than numeric and at
// least one data row follows; otherwise every column gets a synthetic
// column_N name and the first row stays data.
func inferHeader(rows [][]string) (headers []string, body [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 && rowLooksLikeHeader(rows[0]) {
		return cleanHeaders(rows[0]), rows[1:]
	}
	return syntheticHeaders(maxWidth(rows)), rows
}

func rowLooksLikeHeader(row []string) bool {
	for _, cell := range row {
		if cellIsAlphabetic(cell) {
			return true
		}
	}
	return false
}

// cellIsAlphabetic reports whether a cell holds a word rather than a
// number. "1e5" parses as a float, so the numeric check runs first.
func cellIsAlphabetic(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return false
	}
	for _, r := range cell {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// cleanHeaders trims header cells and fills blanks and duplicates with
// positional names so every column stays addressable.
func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	seen := make(map[string]bool, len(row))
	for i, cell := range row {
		h := strings.TrimSpace(cell)
		if h == "" || seen[strings.ToLower(h)] {
			h = columnName(i)
		}
		seen[strings.ToLower(h)] = true
		headers[i] = h
	}
	return headers
}

func syntheticHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = columnName(i)
	}
	return headers
}

func columnName(i int) string {
	return fmt.Sprintf("column_%d", i+1)
}

func maxWidth(rows [][]string) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// rowsToRecords pairs data rows with headers. Rows wider than the header
// set get positional names for the overflow; blank rows are dropped.
// lineOffset is the 1-based source line of the first data row.
func rowsToRecords(headers []string, body [][]string, lineOffset int) []billing.RawRecord {
	var records []billing.RawRecord
	for i, row := range body {
		if rowIsBlank(row) {
			continue
		}
		rec := billing.RawRecord{LineNumber: lineOffset + i}
		for j, cell := range row {
			key := columnName(j)
			if j < len(headers) {
				key = headers[j]
			}
			rec.Set(key, strings.TrimSpace(cell))
		}
		records = append(records, rec)
	}
	return records
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
