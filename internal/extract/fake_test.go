package extract

import (
	"unicode/utf8"

	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

// fakeDocument serves canned page text and words.
type fakeDocument struct {
	pages    []string
	words    map[int][]pdfsource.Word
	wordsErr error
	panicMsg string
	closed   bool
}

func (d *fakeDocument) PageCount() (int, error) {
	return len(d.pages), nil
}

func (d *fakeDocument) PageText(i int) (string, error) {
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	return d.pages[i], nil
}

func (d *fakeDocument) PageWords(i int, _ pdfsource.WordOptions) ([]pdfsource.Word, error) {
	if d.wordsErr != nil {
		return nil, d.wordsErr
	}
	return d.words[i], nil
}

func (d *fakeDocument) PageTables(int) ([][][]string, error) {
	return nil, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// word places text at (x0, top), ten points per character and ten points tall.
func word(text string, x0, top float64) pdfsource.Word {
	return pdfsource.Word{
		Text:   text,
		X0:     x0,
		X1:     x0 + 10*float64(utf8.RuneCountInString(text)),
		Top:    top,
		Bottom: top + 10,
	}
}
