package pdfsource

import (
	"fmt"
	"math"
	"os"

	"github.com/ledongthuc/pdf"
)

// ledongthucDocument reads pages with github.com/ledongthuc/pdf. That reader
// reports one glyph per shown character, so text lines are rebuilt from words.
type ledongthucDocument struct {
	f *os.File
	r *pdf.Reader
}

func openLedongthuc(path string) (*ledongthucDocument, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	return &ledongthucDocument{f: f, r: r}, nil
}

func (d *ledongthucDocument) PageCount() (int, error) {
	return d.r.NumPage(), nil
}

func (d *ledongthucDocument) page(index int) (pdf.Page, error) {
	if err := checkIndex(index, d.r.NumPage()); err != nil {
		return pdf.Page{}, err
	}
	p := d.r.Page(index + 1)
	if p.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d: missing page object", index+1)
	}
	return p, nil
}

// glyphs returns the page's characters in top-left coordinates and the page size.
func (d *ledongthucDocument) glyphs(index int) ([]Glyph, float64, float64, error) {
	p, err := d.page(index)
	if err != nil {
		return nil, 0, 0, err
	}

	texts := p.Content().Text
	width, height := mediaBox(p)
	if height == 0 {
		for _, t := range texts {
			height = math.Max(height, t.Y+t.FontSize)
			width = math.Max(width, t.X+t.W)
		}
	}

	out := make([]Glyph, 0, len(texts))
	for _, t := range texts {
		out = append(out, Glyph{
			Text:   t.S,
			X0:     t.X,
			X1:     t.X + t.W,
			Top:    height - (t.Y + t.FontSize),
			Bottom: height - t.Y,
		})
	}
	return out, width, height, nil
}

func mediaBox(p pdf.Page) (float64, float64) {
	box := p.V.Key("MediaBox")
	if box.Len() != 4 {
		return 0, 0
	}
	return box.Index(2).Float64() - box.Index(0).Float64(), box.Index(3).Float64() - box.Index(1).Float64()
}

func (d *ledongthucDocument) PageText(index int) (string, error) {
	glyphs, _, _, err := d.glyphs(index)
	if err != nil {
		return "", err
	}
	opts := DefaultWordOptions()
	return BandsText(Bands(MergeWords(glyphs, opts), opts.YTolerance)), nil
}

func (d *ledongthucDocument) PageWords(index int, opts WordOptions) ([]Word, error) {
	glyphs, _, _, err := d.glyphs(index)
	if err != nil {
		return nil, err
	}
	return MergeWords(glyphs, opts), nil
}

func (d *ledongthucDocument) PageTables(index int) ([][][]string, error) {
	glyphs, width, height, err := d.glyphs(index)
	if err != nil {
		return nil, err
	}
	return detectTables(MergeWords(glyphs, DefaultWordOptions()), width, height)
}

func (d *ledongthucDocument) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
