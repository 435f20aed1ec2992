package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Portable reads PDF documents page by page. A page that fails text
// extraction is skipped; the document only fails when no page yields text.
type Portable struct {
	maxFileSize int64
	maxTextSize int
}

// NewPortable creates a PDF reader with the given size limit.
func NewPortable(maxFileSize int64) *Portable {
	return &Portable{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024,
	}
}

// ExtractText returns the document's text, pages joined by newlines, plus
// the page count. Image-only documents fail with ErrNoExtractableText.
func (p *Portable) ExtractText(data []byte) (string, int, error) {
	if p.maxFileSize > 0 && int64(len(data)) > p.maxFileSize {
		return "", 0, fmt.Errorf("pdf too large: %d bytes (max %d)", len(data), p.maxFileSize)
	}
	if err := p.validate(data); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrEmptyOrMalformedInput, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrEmptyOrMalformedInput, err)
	}

	pages := reader.NumPage()
	var parts []string
	total := 0
	for pageNum := 1; pageNum <= pages; pageNum++ {
		text, ok := p.pageText(reader, pageNum)
		if !ok {
			continue
		}
		if total+len(text) > p.maxTextSize {
			remaining := p.maxTextSize - total
			if remaining > 0 {
				parts = append(parts, text[:remaining])
			}
			break
		}
		parts = append(parts, text)
		total += len(text)
	}
	if len(parts) == 0 {
		return "", pages, fmt.Errorf("%w: none of %d pages yielded text", ErrNoExtractableText, pages)
	}
	return strings.Join(parts, "\n"), pages, nil
}

// pageText pulls one page's text. The underlying parser can panic on
// malformed content streams, so failures of any kind just skip the page.
func (p *Portable) pageText(reader *pdf.Reader, pageNum int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", false
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// validate runs a relaxed structural check before parsing, which turns
// most garbage input into a clean error instead of a downstream panic.
func (p *Portable) validate(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return err
	}
	return ctx.EnsurePageCount()
}
