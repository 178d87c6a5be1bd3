package pdfsource

import (
	"fmt"
	"strings"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/tables"
)

// detectTables runs tabula's geometric detector over positioned words and
// returns each table as a row-major grid of trimmed cell texts.
func detectTables(words []Word, width, height float64) ([][][]string, error) {
	if len(words) == 0 {
		return nil, nil
	}

	page := model.NewPage(width, height)
	page.RawText = toModelFragments(words, height)

	detector := tables.NewGeometricDetector()
	found, err := detector.Detect(page)
	if err != nil {
		return nil, fmt.Errorf("detecting tables: %w", err)
	}

	grids := make([][][]string, 0, len(found))
	for _, t := range found {
		if t == nil {
			continue
		}
		grid := make([][]string, 0, len(t.Rows))
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = strings.TrimSpace(cell.Text)
			}
			grid = append(grid, cells)
		}
		grids = append(grids, grid)
	}
	return grids, nil
}

// toModelFragments converts top-left word boxes back to PDF user space (origin bottom-left).
func toModelFragments(words []Word, pageHeight float64) []model.TextFragment {
	out := make([]model.TextFragment, len(words))
	for i, w := range words {
		h := w.Bottom - w.Top
		out[i] = model.TextFragment{
			Text:     w.Text,
			BBox:     model.BBox{X: w.X0, Y: pageHeight - w.Bottom, Width: w.X1 - w.X0, Height: h},
			FontSize: h,
		}
	}
	return out
}
