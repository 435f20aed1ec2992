package extract

import "errors"

// Sentinel errors for the failure modes callers branch on. Wrapped errors
// carry file context; use errors.Is to test for these.
var (
	// ErrUnsupportedFormat means no reader claims the file's extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyOrMalformedInput means the source opened but yielded zero
	// usable rows.
	ErrEmptyOrMalformedInput = errors.New("empty or malformed input")

	// ErrNoExtractableText means a document parsed but every page failed
	// text extraction.
	ErrNoExtractableText = errors.New("no extractable text")

	// ErrTimedOut means a single file exceeded its processing deadline.
	ErrTimedOut = errors.New("processing timed out")
)
