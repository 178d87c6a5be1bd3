// Package pdfsource is the PDF access layer of the extractor.
//
// A Document exposes, per page, the plain text (lines separated by newlines),
// coordinate-tagged words and detected table grids. Two backends exist:
// tabula (the default, github.com/tsawler/tabula) and ledongthuc
// (github.com/ledongthuc/pdf). Both feed their glyphs through MergeWords so
// word boundaries follow the same x/y tolerances regardless of backend.
//
// All coordinates are in points with the origin at the top-left corner, so Top
// grows downward the way a reader scans the page.
package pdfsource
