package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scan discovers supported pricing documents on disk.
type Scan struct{}

// NewScan creates a directory scanner.
func NewScan() *Scan {
	return &Scan{}
}

// ScanDirectory walks a directory tree and returns every file a reader
// claims, with its detected format. Hidden directories are skipped, and
// an optional query filters by file name.
func (s *Scan) ScanDirectory(req ScanDirectoryRequest) (*ScanDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(req.Directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}

	absDirectory, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	files := []FileInfo{}

	err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Keep walking past unreadable entries.
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		format, ferr := DetectFormat(d.Name(), "")
		if ferr != nil {
			return nil
		}
		if query != "" && !matchesQuery(d.Name(), query) {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:         path,
			Name:         d.Name(),
			Size:         info.Size(),
			Format:       format,
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &ScanDirectoryResult{
		Directory:  absDirectory,
		Files:      files,
		TotalCount: len(files),
	}, nil
}

// matchesQuery does loose name matching: substring first, then word-wise
// so "enterprise rates" finds "acme_rates_enterprise_2024.xlsx".
func matchesQuery(filename, query string) bool {
	name := strings.ToLower(filename)
	if strings.Contains(name, query) {
		return true
	}

	nameWords := splitIntoWords(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range nameWords {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
