package pdfsource

import (
	"errors"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendTabula     = "tabula"
	BackendLedongthuc = "ledongthuc"
)

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown pdf backend")

// Word is a run of glyphs on one baseline with no gap wider than the x tolerance.
// Coordinates are in points with the origin at the top-left of the page.
type Word struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// WordOptions controls how glyphs are merged into words.
type WordOptions struct {
	XTolerance     float64
	YTolerance     float64
	KeepBlankChars bool
}

// DefaultWordOptions mirrors the tolerances used for the result sheets.
func DefaultWordOptions() WordOptions {
	return WordOptions{XTolerance: 3, YTolerance: 3}
}

// Document is the page-level access a parse needs from a PDF file.
// Page indices are 0-based.
type Document interface {
	PageCount() (int, error)
	PageText(index int) (string, error)
	PageWords(index int, opts WordOptions) ([]Word, error)
	PageTables(index int) ([][][]string, error)
	Close() error
}

// Open opens path with the named backend. The caller must Close the document.
func Open(backend, path string) (Document, error) {
	switch backend {
	case "", BackendTabula:
		return openTabula(path)
	case BackendLedongthuc:
		return openLedongthuc(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func checkIndex(index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("page index %d out of range (document has %d pages)", index, count)
	}
	return nil
}
