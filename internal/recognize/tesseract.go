package recognize

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs recognition through the local tesseract installation via
// gosseract. Each call uses a fresh client, so instances are safe for
// concurrent use.
type Tesseract struct {
	language string
}

// NewTesseract returns a tesseract-backed engine. An empty language
// defaults to English.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

// Recognize extracts text, word list and a mean word confidence from the
// image bytes.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, onProgress ProgressFunc) (Result, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(t.language); err != nil {
		client.Close()
		return Result{}, fmt.Errorf("%w: language %q: %v", ErrEngineInitFailure, t.language, err)
	}
	report(onProgress, 10)

	if err := client.SetImageFromBytes(image); err != nil {
		client.Close()
		return Result{}, fmt.Errorf("%w: %v", ErrEngineInitFailure, err)
	}
	report(onProgress, 30)

	// gosseract exposes no cancellation hook, so the blocking calls run in
	// their own goroutine and the client is closed there once they return.
	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer client.Close()

		text, err := client.Text()
		if err != nil {
			done <- outcome{err: fmt.Errorf("text recognition failed: %w", err)}
			return
		}
		report(onProgress, 80)

		result := Result{Text: strings.TrimSpace(text)}
		boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil || len(boxes) == 0 {
			result.Words = strings.Fields(result.Text)
			result.Confidence = estimateConfidence(result.Text)
		} else {
			total := 0.0
			for _, box := range boxes {
				result.Words = append(result.Words, box.Word)
				total += box.Confidence
			}
			result.Confidence = total / float64(len(boxes))
		}
		done <- outcome{result: result}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return Result{}, out.err
		}
		report(onProgress, 100)
		return out.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// estimateConfidence scores text quality when the engine provides no word
// confidences. The scale matches tesseract's 0-100 range.
func estimateConfidence(text string) float64 {
	if text == "" {
		return 0
	}

	confidence := 50.0
	if len(text) > 500 {
		confidence += 10
	}
	if len(strings.Fields(text)) > 50 {
		confidence += 10
	}

	alpha := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	ratio := float64(alpha) / float64(len(text))
	if ratio > 0.5 && ratio < 0.9 {
		confidence += 10
	}
	return confidence
}
