package pdfsource

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Glyph is a positioned piece of text as reported by a backend: a single
// character, or a whole show-text run whose characters share the width evenly.
type Glyph struct {
	Text   string
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
}

// splitGlyph cuts a run at whitespace so word boundaries inside it survive merging.
// Character positions are interpolated from the run width.
func splitGlyph(g Glyph) []Glyph {
	n := utf8.RuneCountInString(g.Text)
	if n <= 1 || !strings.ContainsFunc(g.Text, unicode.IsSpace) {
		return []Glyph{g}
	}

	cw := (g.X1 - g.X0) / float64(n)
	var out []Glyph
	var cur strings.Builder
	start, i := 0, 0
	curSpace := false

	flush := func(end int) {
		if cur.Len() == 0 {
			return
		}
		out = append(out, Glyph{
			Text:   cur.String(),
			X0:     g.X0 + float64(start)*cw,
			X1:     g.X0 + float64(end)*cw,
			Top:    g.Top,
			Bottom: g.Bottom,
		})
		cur.Reset()
	}

	for _, r := range g.Text {
		space := unicode.IsSpace(r)
		if cur.Len() > 0 && space != curSpace {
			flush(i)
			start = i
		}
		curSpace = space
		cur.WriteRune(r)
		i++
	}
	flush(i)
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MergeWords groups glyphs into words: glyphs whose tops differ by at most
// YTolerance share a line, and within a line a glyph joins the current word
// when it starts no further than XTolerance past the word's right edge.
// Whitespace ends a word unless KeepBlankChars is set.
func MergeWords(glyphs []Glyph, opts WordOptions) []Word {
	var pieces []Glyph
	for _, g := range glyphs {
		if g.Text == "" {
			continue
		}
		pieces = append(pieces, splitGlyph(g)...)
	}
	if len(pieces) == 0 {
		return nil
	}

	var words []Word
	for _, line := range clusterByTop(pieces, opts.YTolerance) {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })

		var cur *Word
		var text strings.Builder
		finish := func() {
			if cur == nil {
				return
			}
			cur.Text = text.String()
			if !opts.KeepBlankChars {
				cur.Text = strings.TrimSpace(cur.Text)
			}
			if cur.Text != "" {
				words = append(words, *cur)
			}
			cur = nil
			text.Reset()
		}

		for _, g := range line {
			if isBlank(g.Text) && !opts.KeepBlankChars {
				finish()
				continue
			}
			if cur != nil && g.X0-cur.X1 <= opts.XTolerance {
				text.WriteString(g.Text)
				cur.X1 = math.Max(cur.X1, g.X1)
				cur.Top = math.Min(cur.Top, g.Top)
				cur.Bottom = math.Max(cur.Bottom, g.Bottom)
				continue
			}
			finish()
			cur = &Word{X0: g.X0, X1: g.X1, Top: g.Top, Bottom: g.Bottom}
			text.WriteString(g.Text)
		}
		finish()
	}
	return words
}

// clusterByTop sorts glyphs by top and starts a new line whenever a glyph is
// more than tol below the first glyph of the current line.
func clusterByTop(glyphs []Glyph, tol float64) [][]Glyph {
	sorted := append([]Glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var lines [][]Glyph
	var anchor float64
	for _, g := range sorted {
		if len(lines) == 0 || g.Top-anchor > tol {
			lines = append(lines, []Glyph{g})
			anchor = g.Top
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], g)
	}
	return lines
}

// Band is a horizontal strip of words sharing a (rounded) top, ordered left to right.
type Band struct {
	Top   float64
	Words []Word
}

// Text joins the band's words with single spaces.
func (b Band) Text() string {
	parts := make([]string, len(b.Words))
	for i, w := range b.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Bottom returns the lowest word bottom in the band.
func (b Band) Bottom() float64 {
	bottom := b.Top
	for _, w := range b.Words {
		bottom = math.Max(bottom, w.Bottom)
	}
	return bottom
}

// Segment is a run of words in a band with no horizontal gap wider than the split gap.
type Segment struct {
	Text string
	X0   float64
	X1   float64
	Top  float64
}

// Segments splits the band wherever two neighbouring words are more than gap apart.
func (b Band) Segments(gap float64) []Segment {
	var segs []Segment
	for i, w := range b.Words {
		if i == 0 || w.X0-b.Words[i-1].X1 > gap {
			segs = append(segs, Segment{Text: w.Text, X0: w.X0, X1: w.X1, Top: w.Top})
			continue
		}
		s := &segs[len(segs)-1]
		s.Text += " " + w.Text
		s.X1 = w.X1
		s.Top = math.Min(s.Top, w.Top)
	}
	return segs
}

// Bands groups words into horizontal bands by rounded top. Words whose rounded
// tops are within tol of a band's first word join that band.
func Bands(words []Word, tol float64) []Band {
	sorted := append([]Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var bands []Band
	for _, w := range sorted {
		top := math.Round(w.Top)
		if len(bands) == 0 || top-bands[len(bands)-1].Top > tol {
			bands = append(bands, Band{Top: top})
		}
		b := &bands[len(bands)-1]
		b.Words = append(b.Words, w)
	}

	for i := range bands {
		ws := bands[i].Words
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].X0 < ws[b].X0 })
	}
	return bands
}

// BandsText renders bands as newline separated lines.
func BandsText(bands []Band) string {
	lines := make([]string, len(bands))
	for i, b := range bands {
		lines[i] = b.Text()
	}
	return strings.Join(lines, "\n")
}
