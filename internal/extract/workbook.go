package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/parsebill/ratesheet/internal/billing"
)

// Workbook reads spreadsheet files. Only the first sheet is consulted;
// pricing workbooks keep the rate table there and later sheets hold notes
// and pivot noise.
type Workbook struct {
	maxFileSize int64
}

// NewWorkbook creates a workbook reader with the given size limit.
func NewWorkbook(maxFileSize int64) *Workbook {
	return &Workbook{maxFileSize: maxFileSize}
}

// Read extracts raw records from the first sheet of an xlsx/xls payload.
func (w *Workbook) Read(data []byte) ([]billing.RawRecord, error) {
	if w.maxFileSize > 0 && int64(len(data)) > w.maxFileSize {
		return nil, fmt.Errorf("workbook too large: %d bytes (max %d)", len(data), w.maxFileSize)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyOrMalformedInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrEmptyOrMalformedInput)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no data", ErrEmptyOrMalformedInput, sheets[0])
	}

	headers, body := inferHeader(rows)
	lineOffset := 1
	if len(body) < len(rows) {
		lineOffset = 2 // row 1 was consumed as the header
	}
	records := rowsToRecords(headers, body, lineOffset)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no data rows", ErrEmptyOrMalformedInput, sheets[0])
	}
	return records, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if !rowIsBlank(row) {
			out = append(out, row)
		}
	}
	return out
}
