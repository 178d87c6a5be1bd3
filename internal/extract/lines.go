package extract

import (
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

// Line sources.
const (
	SourceWords = "words"
	SourceText  = "text"
)

// LineRecord is one line of the category page. Word-built lines keep their
// band so later stages can reason about coordinates; text lines have Band nil.
type LineRecord struct {
	Index    int
	Text     string
	Band     *pdfsource.Band
	Segments []pdfsource.Segment
}

// HasPosition reports whether the line carries coordinates.
func (l LineRecord) HasPosition() bool {
	return l.Band != nil
}

// TextLines splits plain page text into line records.
func TextLines(text string) []LineRecord {
	raw := strings.Split(text, "\n")
	lines := make([]LineRecord, len(raw))
	for i, s := range raw {
		lines[i] = LineRecord{Index: i, Text: strings.TrimRight(s, "\r")}
	}
	return lines
}

// WordLines groups words into bands and renders each band as a line.
// Score-shaped segments after the first one are left out of the line text:
// they belong to the bracket drawn to the right of the roster, not to the row.
func WordLines(words []pdfsource.Word, yTolerance, segmentGap float64) []LineRecord {
	bands := pdfsource.Bands(words, yTolerance)
	lines := make([]LineRecord, len(bands))
	for i := range bands {
		band := &bands[i]
		segs := band.Segments(segmentGap)

		parts := make([]string, 0, len(segs))
		for j, s := range segs {
			if j > 0 && isScore(s.Text) {
				continue
			}
			parts = append(parts, s.Text)
		}

		lines[i] = LineRecord{
			Index:    i,
			Text:     strings.Join(parts, " "),
			Band:     band,
			Segments: segs,
		}
	}
	return lines
}

// lineTexts returns the text of each record.
func lineTexts(lines []LineRecord) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
