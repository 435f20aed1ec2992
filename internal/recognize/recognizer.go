package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultMaxImageSize = 50 * 1024 * 1024

// Config controls a Recognizer.
type Config struct {
	// Engine performs the recognition. Defaults to tesseract.
	Engine Engine
	// MaxImageSize bounds accepted input in bytes. Defaults to 50MB.
	MaxImageSize int64
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Recognizer validates image uploads before handing them to an Engine.
// Corrupt or empty images are rejected up front so the engine only ever
// sees plausible input.
type Recognizer struct {
	engine  Engine
	maxSize int64
	logger  *zap.Logger
}

// NewRecognizer creates a Recognizer from cfg, filling in defaults.
func NewRecognizer(cfg Config) *Recognizer {
	engine := cfg.Engine
	if engine == nil {
		engine = NewTesseract("")
	}
	maxSize := cfg.MaxImageSize
	if maxSize <= 0 {
		maxSize = defaultMaxImageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recognizer{engine: engine, maxSize: maxSize, logger: logger}
}

// Recognize validates the image and runs it through the engine.
func (r *Recognizer) Recognize(ctx context.Context, data []byte, name string, onProgress ProgressFunc) (Result, error) {
	format, err := r.validate(data, name)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	result, err := r.engine.Recognize(ctx, data, onProgress)
	if err != nil {
		return Result{}, err
	}

	r.logger.Debug("image recognized",
		zap.String("image", name),
		zap.String("format", format),
		zap.Int("words", len(result.Words)),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// RecognizeText adapts Recognize to the extraction pipeline, which needs
// only the text and the engine confidence.
func (r *Recognizer) RecognizeText(ctx context.Context, data []byte, name string) (string, float64, error) {
	result, err := r.Recognize(ctx, data, name, nil)
	if err != nil {
		return "", 0, err
	}
	return result.Text, result.Confidence, nil
}

// validate rejects input the engine could not possibly read and returns
// the detected image format.
func (r *Recognizer) validate(data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %q is empty", ErrInvalidImage, name)
	}
	if int64(len(data)) > r.maxSize {
		return "", fmt.Errorf("%w: %q is too large: %d bytes exceeds the %d byte limit",
			ErrInvalidImage, name, len(data), r.maxSize)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %q cannot be decoded: the file may be corrupt or not an image", ErrInvalidImage, name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: %q has zero dimensions (%dx%d)", ErrInvalidImage, name, cfg.Width, cfg.Height)
	}
	return format, nil
}
