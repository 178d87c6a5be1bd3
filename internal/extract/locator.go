package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/logger"
	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

// ErrCategoryNotFound is matched by every NotFoundError.
var ErrCategoryNotFound = errors.New("category page not found")

// NotFoundError reports that no page carries the requested category.
type NotFoundError struct {
	Category string
	Pages    int // number of pages searched
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("category %q not found in %d pages", e.Category, e.Pages)
}

// Is lets errors.Is(err, ErrCategoryNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrCategoryNotFound
}

// containsCategory compares page text and category after normalization.
func containsCategory(pageText, category string) bool {
	if strings.TrimSpace(pageText) == "" {
		return false
	}
	return strings.Contains(Normalize(pageText), Normalize(category))
}

// FindCategoryPage returns the index of the first page containing category.
func FindCategoryPage(pages []string, category string) (int, error) {
	for i, text := range pages {
		if containsCategory(text, category) {
			return i, nil
		}
	}
	return -1, &NotFoundError{Category: category, Pages: len(pages)}
}

// LocatedPage is the category page with its normalized text and, when the
// backend could provide them, its words.
type LocatedPage struct {
	Index int // 0-based
	Text  string
	Words []pdfsource.Word
}

// LocatePage scans the document page by page and stops at the first page
// containing category. Words are optional: a failure to extract them leaves
// Words nil and the caller falls back to text lines.
func LocatePage(doc pdfsource.Document, category string, opts pdfsource.WordOptions, withWords bool) (*LocatedPage, error) {
	count, err := doc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}

	for i := 0; i < count; i++ {
		text, err := doc.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i+1, err)
		}
		if !containsCategory(text, category) {
			continue
		}

		logger.Info("category page located", logger.Fields{
			"category": category,
			"page":     i + 1,
		})

		located := &LocatedPage{Index: i, Text: Normalize(text)}
		if withWords {
			words, err := doc.PageWords(i, opts)
			if err != nil {
				logger.Warn("word extraction failed, using text lines", logger.Fields{
					"page":  i + 1,
					"error": err.Error(),
				})
			} else {
				for j := range words {
					words[j].Text = Normalize(words[j].Text)
				}
				located.Words = words
			}
		}
		return located, nil
	}

	return nil, &NotFoundError{Category: category, Pages: count}
}
