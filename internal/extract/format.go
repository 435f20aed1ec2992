package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// extensionFormats maps file extensions to the reader that claims them.
var extensionFormats = map[string]Format{
	".xlsx": FormatWorkbook,
	".xlsm": FormatWorkbook,
	".xls":  FormatWorkbook,
	".csv":  FormatDelimited,
	".tsv":  FormatDelimited,
	".json": FormatStructured,
	".pdf":  FormatPortable,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".bmp":  FormatImage,
	".tif":  FormatImage,
	".tiff": FormatImage,
	".webp": FormatImage,
	".gif":  FormatImage,
	".txt":  FormatPlainText,
	".text": FormatPlainText,
}

// DetectFormat maps a file name (and optional MIME hint) to the reader
// that handles it. Unknown extensions fail with ErrUnsupportedFormat and
// the offending extension in the message.
func DetectFormat(name, mimeType string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}

	// MIME hints rescue extensionless exports and generic .dat dumps.
	switch {
	case strings.HasPrefix(mimeType, "text/csv"):
		return FormatDelimited, nil
	case strings.HasPrefix(mimeType, "application/json"):
		return FormatStructured, nil
	case strings.HasPrefix(mimeType, "application/pdf"):
		return FormatPortable, nil
	case strings.HasPrefix(mimeType, "image/"):
		return FormatImage, nil
	case strings.HasPrefix(mimeType, "text/plain"):
		return FormatPlainText, nil
	}

	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// SupportedExtensions returns every extension the pipeline accepts, sorted
// by format group.
func SupportedExtensions() []string {
	return []string{
		".xlsx", ".xlsm", ".xls",
		".csv", ".tsv",
		".json",
		".pdf",
		".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp", ".gif",
		".txt", ".text",
	}
}
