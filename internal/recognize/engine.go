// Package recognize turns raster images into text through a pluggable
// recognition engine.
package recognize

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEngineInitFailure means the recognition engine could not be
	// prepared for the submitted image.
	ErrEngineInitFailure = errors.New("recognition engine initialization failed")

	// ErrInvalidImage means the input failed validation before it reached
	// the engine.
	ErrInvalidImage = errors.New("invalid image")
)

// EngineTesseract selects the local tesseract installation.
const EngineTesseract = "tesseract"

// ProgressFunc receives coarse recognition progress in the range 0-100.
type ProgressFunc func(percent int)

// Result is the outcome of one recognition pass over a single image.
type Result struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Words      []string `json:"words"`
}

// Engine performs the actual character recognition. Implementations must
// honor ctx cancellation and may report progress through onProgress.
type Engine interface {
	Recognize(ctx context.Context, image []byte, onProgress ProgressFunc) (Result, error)
}

// NewEngine builds the named engine. An empty name selects tesseract.
func NewEngine(name, language string) (Engine, error) {
	switch name {
	case "", EngineTesseract:
		return NewTesseract(language), nil
	default:
		return nil, fmt.Errorf("%w: unknown recognition engine %q", ErrEngineInitFailure, name)
	}
}

func report(onProgress ProgressFunc, percent int) {
	if onProgress != nil {
		onProgress(percent)
	}
}
