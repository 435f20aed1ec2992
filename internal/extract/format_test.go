package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		mime string
		want Format
	}{
		{"rates.xlsx", "", FormatWorkbook},
		{"legacy.xls", "", FormatWorkbook},
		{"macro.xlsm", "", FormatWorkbook},
		{"pricing.csv", "", FormatDelimited},
		{"pricing.tsv", "", FormatDelimited},
		{"plans.json", "", FormatStructured},
		{"sheet.pdf", "", FormatPortable},
		{"scan.png", "", FormatImage},
		{"scan.JPG", "", FormatImage},
		{"photo.jpeg", "", FormatImage},
		{"fax.tiff", "", FormatImage},
		{"notes.txt", "", FormatPlainText},
		{"REPORT.XLSX", "", FormatWorkbook},
		{"export", "text/csv", FormatDelimited},
		{"export", "application/json", FormatStructured},
		{"export", "application/pdf", FormatPortable},
		{"export", "image/png", FormatImage},
		{"export", "text/plain; charset=utf-8", FormatPlainText},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.mime, func(t *testing.T) {
			got, err := DetectFormat(tt.name, tt.mime)
			if err != nil {
				t.Fatalf("DetectFormat(%q, %q) failed: %v", tt.name, tt.mime, err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q, %q) = %v, want %v", tt.name, tt.mime, got, tt.want)
			}
		})
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	_, err := DetectFormat("contract.docx", "")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), ".docx") {
		t.Errorf("Expected error to name the extension, got %q", err.Error())
	}
}

func TestDetectFormatNoExtension(t *testing.T) {
	_, err := DetectFormat("LICENSE", "")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "LICENSE") {
		t.Errorf("Expected error to name the file, got %q", err.Error())
	}
}

func TestSupportedExtensionsAllDetect(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		if _, err := DetectFormat("file"+ext, ""); err != nil {
			t.Errorf("Extension %s is listed as supported but does not detect: %v", ext, err)
		}
	}
}
