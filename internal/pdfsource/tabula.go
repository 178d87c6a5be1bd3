package pdfsource

import (
	"fmt"
	"strings"

	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/text"
)

// tabulaDocument reads pages with tabula's pure-Go PDF reader.
type tabulaDocument struct {
	r     *reader.Reader
	pages map[int]*tabulaPage
}

type tabulaPage struct {
	fragments []text.TextFragment
	width     float64
	height    float64
}

func openTabula(path string) (*tabulaDocument, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	return &tabulaDocument{r: r, pages: make(map[int]*tabulaPage)}, nil
}

func (d *tabulaDocument) PageCount() (int, error) {
	return d.r.PageCount()
}

// load extracts and caches the text fragments of one page.
func (d *tabulaDocument) load(index int) (*tabulaPage, error) {
	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	count, err := d.r.PageCount()
	if err != nil {
		return nil, err
	}
	if err := checkIndex(index, count); err != nil {
		return nil, err
	}

	page, err := d.r.GetPage(index)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}
	fragments, err := d.r.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}
	width, _ := page.Width()
	height, _ := page.Height()

	p := &tabulaPage{fragments: fragments, width: width, height: height}
	d.pages[index] = p
	return p, nil
}

func (d *tabulaDocument) PageText(index int) (string, error) {
	p, err := d.load(index)
	if err != nil {
		return "", err
	}

	detected := layout.NewLineDetector().Detect(p.fragments, p.width, p.height)
	lines := make([]string, 0, len(detected.Lines))
	for _, line := range detected.Lines {
		lines = append(lines, line.Text)
	}
	return strings.Join(lines, "\n"), nil
}

func (d *tabulaDocument) PageWords(index int, opts WordOptions) ([]Word, error) {
	p, err := d.load(index)
	if err != nil {
		return nil, err
	}
	return MergeWords(p.glyphs(), opts), nil
}

func (d *tabulaDocument) PageTables(index int) ([][][]string, error) {
	p, err := d.load(index)
	if err != nil {
		return nil, err
	}
	return detectTables(MergeWords(p.glyphs(), DefaultWordOptions()), p.width, p.height)
}

func (d *tabulaDocument) Close() error {
	if d.r == nil {
		return nil
	}
	err := d.r.Close()
	d.r = nil
	d.pages = nil
	return err
}

// glyphs flips fragment boxes from PDF user space into top-left coordinates.
func (p *tabulaPage) glyphs() []Glyph {
	out := make([]Glyph, 0, len(p.fragments))
	for _, f := range p.fragments {
		h := f.Height
		if h <= 0 {
			h = f.FontSize
		}
		out = append(out, Glyph{
			Text:   f.Text,
			X0:     f.X,
			X1:     f.X + f.Width,
			Top:    p.height - (f.Y + h),
			Bottom: p.height - f.Y,
		})
	}
	return out
}
