package extract

import (
	"time"

	"github.com/parsebill/ratesheet/internal/billing"
)

// Format identifies which reader handles a file.
type Format string

const (
	// FormatWorkbook covers spreadsheet files (.xlsx, .xls).
	FormatWorkbook Format = "workbook"
	// FormatDelimited covers separated-value files (.csv, .tsv).
	FormatDelimited Format = "delimited"
	// FormatStructured covers JSON documents.
	FormatStructured Format = "structured"
	// FormatPortable covers PDF documents.
	FormatPortable Format = "portable"
	// FormatImage covers raster images routed to text recognition.
	FormatImage Format = "image"
	// FormatPlainText covers .txt and unknown text files.
	FormatPlainText Format = "plain_text"
)

// Status is a file's position in the processing lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Progress milestones reported while a file is processing.
const (
	ProgressStarted    = 10  // reader dispatched
	ProgressRead       = 30  // source opened and validated
	ProgressParsed     = 60  // raw records reconstructed
	ProgressNormalized = 90  // records mapped to billing items
	ProgressComplete   = 100 // result assembled
)

// Extraction confidence tiers by source fidelity. Structured sources carry
// near-certain field mapping; reconstructed text carries less.
const (
	ConfidenceStructured     = 99.0
	ConfidenceDelimited      = 98.0
	ConfidenceWorkbook       = 95.0
	ConfidencePlainText      = 85.0
	ConfidenceReconstructed  = 75.0
	ConfidenceDegenerate     = 40.0
	ConfidenceRecognizedBase = 70.0
)

// ExtractFileRequest names one file to process. Data wins over Path when
// both are set; Name defaults to the path's base name and drives format
// dispatch.
type ExtractFileRequest struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
	Data []byte `json:"-"`
}

// ExtractFileResult is the outcome for a single file. Failed files carry
// an Error string instead of items; batch processing never aborts on one
// file's failure. ExtractedText and Preview are set only for formats that
// pass through raw text (PDF, image, plain text).
type ExtractFileResult struct {
	FileID        string         `json:"file_id"`
	FileName      string         `json:"file_name"`
	Format        Format         `json:"format,omitempty"`
	Status        Status         `json:"status"`
	Items         []billing.Item `json:"items,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	ExtractedText string         `json:"extracted_text,omitempty"`
	Preview       string         `json:"preview,omitempty"`
	Error         string         `json:"error,omitempty"`
	ElapsedMS     int64          `json:"elapsed_ms"`
}

// ExtractBatchResult aggregates per-file outcomes in input order.
type ExtractBatchResult struct {
	Files     []ExtractFileResult `json:"files"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
	Items     int                 `json:"items"`
}

// ExtractTextRequest asks for raw text instead of billing items.
type ExtractTextRequest struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
	Data []byte `json:"-"`
}

// ExtractTextResult is the raw text pulled from a document before any
// record reconstruction.
type ExtractTextResult struct {
	FileName string `json:"file_name"`
	Format   Format `json:"format"`
	Text     string `json:"text"`
	Pages    int    `json:"pages,omitempty"`
}

// ScanDirectoryRequest lists supported pricing documents under a directory.
type ScanDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query,omitempty"`
}

// ScanDirectoryResult lists discovered files with their detected formats.
type ScanDirectoryResult struct {
	Directory  string     `json:"directory"`
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
}

// FileInfo describes one discovered file.
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Format       Format `json:"format"`
	ModifiedTime string `json:"modified_time"`
}

// Update is one progress observation for a tracked file.
type Update struct {
	FileID   string    `json:"file_id"`
	FileName string    `json:"file_name"`
	Status   Status    `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}
