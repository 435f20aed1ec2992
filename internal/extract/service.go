package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parsebill/ratesheet/internal/billing"
	"github.com/parsebill/ratesheet/internal/textparse"
)

// TextRecognizer turns an image into text. The second return is the
// engine's own confidence on a 0-100 scale.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, data []byte, name string) (string, float64, error)
}

// ServiceConfig carries the pipeline's knobs. Zero values fall back to
// sensible defaults; a nil Recognizer disables the image path.
type ServiceConfig struct {
	MaxFileSize int64
	FileTimeout time.Duration
	Recognizer  TextRecognizer
	Logger      *zap.Logger
	OnUpdate    func(Update)
}

// Service turns pricing documents into normalized billing items by
// orchestrating format dispatch, the per-format readers, the line
// reconstructor and the normalizer.
type Service struct {
	maxFileSize int64
	timeout     time.Duration
	workbook    *Workbook
	delimited   *Delimited
	structured  *Structured
	portable    *Portable
	recognizer  TextRecognizer
	normalizer  *billing.Normalizer
	scan        *Scan
	logger      *zap.Logger
	onUpdate    func(Update)
	info        infoCache
}

// NewService creates a pipeline service with all readers wired.
func NewService(cfg ServiceConfig) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 100 * 1024 * 1024
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{
		maxFileSize: cfg.MaxFileSize,
		timeout:     cfg.FileTimeout,
		workbook:    NewWorkbook(cfg.MaxFileSize),
		delimited:   NewDelimited(),
		structured:  NewStructured(),
		portable:    NewPortable(cfg.MaxFileSize),
		recognizer:  cfg.Recognizer,
		normalizer:  billing.NewNormalizer(cfg.Logger),
		scan:        NewScan(),
		logger:      cfg.Logger,
		onUpdate:    cfg.OnUpdate,
		info:        infoCache{ttl: 5 * time.Minute},
	}
}

// ExtractFile processes one file end to end. Failures are reported in the
// result rather than as an error so batch callers can keep going.
func (s *Service) ExtractFile(ctx context.Context, req ExtractFileRequest) ExtractFileResult {
	start := time.Now()
	fileID := uuid.NewString()
	name := displayName(req.Path, req.Name)
	tracker := NewTracker(fileID, name, s.onUpdate)

	result := ExtractFileResult{FileID: fileID, FileName: name}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type outcome struct {
		processed
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		p, err := s.process(ctx, req, name, tracker)
		done <- outcome{processed: p, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
		if out.err != nil {
			out.err = timeoutError(out.err)
		}
	case <-ctx.Done():
		out.err = timeoutError(ctx.Err())
	}

	result.Format = out.format
	result.ElapsedMS = time.Since(start).Milliseconds()
	if out.err != nil {
		tracker.Fail(out.err)
		result.Status = StatusFailed
		result.Error = out.err.Error()
		s.logger.Warn("file extraction failed",
			zap.String("file", name),
			zap.String("format", string(out.format)),
			zap.Error(out.err))
		return result
	}

	tracker.Complete()
	result.Status = StatusCompleted
	result.Items = out.items
	result.Confidence = out.conf
	if out.text != "" {
		result.ExtractedText = out.text
		result.Preview = excerpt(out.text, previewLength)
	}
	s.logger.Info("file extracted",
		zap.String("file", name),
		zap.String("format", string(out.format)),
		zap.Int("items", len(out.items)),
		zap.Int64("elapsed_ms", result.ElapsedMS))
	return result
}

// ExtractBatch processes files sequentially in input order. One file's
// failure never aborts the rest.
func (s *Service) ExtractBatch(ctx context.Context, reqs []ExtractFileRequest) ExtractBatchResult {
	batch := ExtractBatchResult{Files: make([]ExtractFileResult, 0, len(reqs))}
	for _, req := range reqs {
		res := s.ExtractFile(ctx, req)
		batch.Files = append(batch.Files, res)
		if res.Status == StatusCompleted {
			batch.Completed++
			batch.Items += len(res.Items)
		} else {
			batch.Failed++
		}
	}
	return batch
}

// ExtractText returns a document's raw text without reconstructing
// records. Only text-bearing formats support it.
func (s *Service) ExtractText(ctx context.Context, req ExtractTextRequest) (*ExtractTextResult, error) {
	name := displayName(req.Path, req.Name)
	format, err := DetectFormat(name, "")
	if err != nil {
		return nil, err
	}

	data, err := s.load(ExtractFileRequest{Path: req.Path, Name: req.Name, Data: req.Data})
	if err != nil {
		return nil, err
	}

	res := &ExtractTextResult{FileName: name, Format: format}
	switch format {
	case FormatPortable:
		text, pages, err := s.portable.ExtractText(data)
		if err != nil {
			return nil, err
		}
		res.Text = text
		res.Pages = pages
	case FormatImage:
		if s.recognizer == nil {
			return nil, fmt.Errorf("image recognition is not configured")
		}
		text, _, err := s.recognizer.RecognizeText(ctx, data, name)
		if err != nil {
			return nil, err
		}
		res.Text = text
	case FormatPlainText:
		res.Text = string(data)
	default:
		return nil, fmt.Errorf("%w: %s does not support raw text extraction", ErrUnsupportedFormat, format)
	}
	return res, nil
}

// ScanDirectory lists supported pricing documents under a directory.
func (s *Service) ScanDirectory(req ScanDirectoryRequest) (*ScanDirectoryResult, error) {
	return s.scan.ScanDirectory(req)
}

// MaxFileSize returns the configured per-file size limit.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// processed is the successful half of one file's pipeline run.
type processed struct {
	format Format
	items  []billing.Item
	conf   float64
	text   string
}

func (s *Service) process(ctx context.Context, req ExtractFileRequest, name string, tracker *Tracker) (processed, error) {
	tracker.Start()

	format, err := DetectFormat(name, "")
	if err != nil {
		return processed{}, err
	}

	data, err := s.load(req)
	if err != nil {
		return processed{format: format}, err
	}
	tracker.Advance(ProgressRead)
	if err := ctx.Err(); err != nil {
		return processed{format: format}, timeoutError(err)
	}

	var (
		records []billing.RawRecord
		conf    float64
		text    string
	)
	source := sourcePrefix(format)

	switch format {
	case FormatWorkbook:
		records, err = s.workbook.Read(data)
		conf = ConfidenceWorkbook
	case FormatDelimited:
		records, err = s.delimited.Read(data, name)
		conf = ConfidenceDelimited
	case FormatStructured:
		records, err = s.structured.Read(data)
		conf = ConfidenceStructured
	case FormatPlainText:
		text = string(data)
		records = textparse.ParseText(text)
		conf = ConfidencePlainText
		if len(records) == 0 {
			err = fmt.Errorf("%w: no pricing lines in %s", ErrEmptyOrMalformedInput, name)
		}
	case FormatPortable:
		text, _, err = s.portable.ExtractText(data)
		if err == nil {
			records = textparse.ParseText(text)
			conf = ConfidenceReconstructed
			if len(records) == 0 {
				// Degenerate result: the document had text but no
				// recognizable pricing lines.
				tracker.Advance(ProgressParsed)
				items := []billing.Item{degenerateItem(source, name, text, ConfidenceDegenerate)}
				tracker.Advance(ProgressNormalized)
				return processed{format: format, items: items, conf: ConfidenceDegenerate, text: text}, nil
			}
		}
	case FormatImage:
		if s.recognizer == nil {
			return processed{format: format}, fmt.Errorf("image recognition is not configured")
		}
		var engineConf float64
		text, engineConf, err = s.recognizer.RecognizeText(ctx, data, name)
		if err == nil {
			records = textparse.ParseText(text)
			conf = recognizedConfidence(engineConf)
			if len(records) == 0 {
				tracker.Advance(ProgressParsed)
				items := []billing.Item{degenerateItem(source, name, text, engineConf)}
				tracker.Advance(ProgressNormalized)
				return processed{format: format, items: items, conf: engineConf, text: text}, nil
			}
		}
	default:
		err = fmt.Errorf("%w: no reader for %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return processed{format: format}, err
	}
	tracker.Advance(ProgressParsed)
	if err := ctx.Err(); err != nil {
		return processed{format: format}, timeoutError(err)
	}

	items := s.normalizer.NormalizeAll(records, billing.Options{
		Source:     source,
		Confidence: conf,
	})
	tracker.Advance(ProgressNormalized)
	return processed{format: format, items: items, conf: conf, text: text}, nil
}

// load returns the file bytes, reading from disk when no in-memory data
// was supplied.
func (s *Service) load(req ExtractFileRequest) ([]byte, error) {
	if req.Data != nil {
		if s.maxFileSize > 0 && int64(len(req.Data)) > s.maxFileSize {
			return nil, fmt.Errorf("file too large: %d bytes (max %d)", len(req.Data), s.maxFileSize)
		}
		return req.Data, nil
	}
	if req.Path == "" {
		return nil, fmt.Errorf("no path or data provided")
	}

	info, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", req.Path)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), s.maxFileSize)
	}

	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Path, err)
	}
	return data, nil
}

func displayName(path, name string) string {
	if name != "" {
		return name
	}
	if path != "" {
		return filepath.Base(path)
	}
	return "unnamed"
}

func sourcePrefix(format Format) string {
	switch format {
	case FormatWorkbook:
		return "excel"
	case FormatDelimited:
		return "csv"
	case FormatStructured:
		return "json"
	case FormatPortable:
		return "pdf"
	case FormatImage:
		return "ocr"
	case FormatPlainText:
		return "text"
	}
	return "item"
}

// recognizedConfidence blends the fixed reconstruction tier with the
// engine's own certainty, clamped to the percentage scale.
func recognizedConfidence(engineConf float64) float64 {
	c := ConfidenceRecognizedBase + engineConf*0.15
	if c > 100 {
		c = 100
	}
	if c < 0 {
		c = 0
	}
	return c
}

// previewLength caps result previews and degenerate item descriptions.
const previewLength = 200

// degenerateItem stands in when a document produced text but no pricing
// lines: a single zero-priced one-time item named after the file, with a
// short excerpt of the text as its description.
func degenerateItem(source, fileName, text string, confidence float64) billing.Item {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if stem == "" {
		stem = "Service 1"
	}
	it := billing.NewOneTimeItem(source+"-0", stem, billing.NewMoney(0, ""))
	it.Description = excerpt(text, previewLength)
	it.Source = source
	it.Metadata[billing.MetaExtractionConfidence] = confidence
	return it
}

// excerpt collapses whitespace and truncates to at most max runes.
func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max]))
}

func timeoutError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	return err
}
