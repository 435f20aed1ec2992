package extract

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a structurally valid single-page document with no
// content stream, which exercises the no-extractable-text path without a
// fixture file.
func minimalPDF() []byte {
	var buf bytes.Buffer
	var offsets []int

	write := func(s string) { buf.WriteString(s) }
	object := func(s string) {
		offsets = append(offsets, buf.Len())
		write(s)
	}

	write("%PDF-1.4\n")
	object("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	object("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	object("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	xref := buf.Len()
	write("xref\n0 4\n")
	write("0000000000 65535 f \n")
	for _, off := range offsets {
		write(fmt.Sprintf("%010d 00000 n \n", off))
	}
	write("trailer\n<< /Size 4 /Root 1 0 R >>\n")
	write(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xref))
	return buf.Bytes()
}

func TestPortableExtractTextNoContent(t *testing.T) {
	_, pages, err := NewPortable(0).ExtractText(minimalPDF())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoExtractableText)
	assert.Equal(t, 1, pages)
}

func TestPortableExtractTextGarbage(t *testing.T) {
	_, _, err := NewPortable(0).ExtractText([]byte("not a pdf at all"))
	assert.ErrorIs(t, err, ErrEmptyOrMalformedInput)
}

func TestPortableExtractTextSizeLimit(t *testing.T) {
	_, _, err := NewPortable(4).ExtractText(minimalPDF())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
