package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parsebill/ratesheet/internal/billing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Delimited reads separated-value files. Rows with the wrong field count
// or broken quoting are skipped rather than failing the file; the reader
// only errors when nothing usable remains.
type Delimited struct{}

// NewDelimited creates a CSV/TSV reader.
func NewDelimited() *Delimited {
	return &Delimited{}
}

// Read extracts raw records from a delimited payload. The name picks the
// separator: .tsv splits on tabs, everything else on commas.
func (d *Delimited) Read(data []byte, name string) ([]billing.RawRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		r.Comma = '\t'
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Skip the malformed line and keep reading.
			continue
		}
		if !rowIsBlank(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows in %s", ErrEmptyOrMalformedInput, name)
	}

	headers, body := inferHeader(rows)
	lineOffset := 1
	if len(body) < len(rows) {
		lineOffset = 2
	}
	records := rowsToRecords(headers, body, lineOffset)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no data rows in %s", ErrEmptyOrMalformedInput, name)
	}
	return records, nil
}
