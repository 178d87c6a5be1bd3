package extract

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/config"
	"github.com/pfrederiksen/bracket-extract/internal/logger"
	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

// OpenFunc opens a document with the named backend.
type OpenFunc func(backend, path string) (pdfsource.Document, error)

// Parser extracts one category bracket per call.
type Parser struct {
	cfg  *config.Config
	open OpenFunc
}

// NewParser returns a Parser using cfg. A nil cfg means config.Default().
func NewParser(cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Parser{cfg: cfg, open: pdfsource.Open}
}

// WithOpener replaces the document opener, mainly for tests.
func (p *Parser) WithOpener(open OpenFunc) *Parser {
	p.open = open
	return p
}

// ParseCategory opens the PDF at path and extracts the bracket of category.
// The document is closed on every path.
func (p *Parser) ParseCategory(path, category string) (*bracket.TournamentData, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("parse.duration", time.Since(start))
	}()

	doc, err := p.open(p.cfg.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("closing document failed", logger.Fields{"path": path, "error": cerr.Error()})
		}
	}()

	td, err := p.Parse(doc, category)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return td, nil
}

// Parse extracts the bracket of category from an open document. A panic in
// the PDF backend is turned into an error.
func (p *Parser) Parse(doc pdfsource.Document, category string) (td *bracket.TournamentData, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pdf backend panicked", logger.Fields{
				"category": category,
				"stack":    string(debug.Stack()),
			}, fmt.Errorf("%v", r))
			td, err = nil, fmt.Errorf("pdf backend panic: %v", r)
		}
	}()

	if category == "" {
		category = p.cfg.Category
	}
	search := Normalize(category)

	wopts := pdfsource.WordOptions{
		XTolerance:     p.cfg.Words.XTolerance,
		YTolerance:     p.cfg.Words.YTolerance,
		KeepBlankChars: p.cfg.Words.KeepBlankChars,
	}
	page, err := LocatePage(doc, search, wopts, p.cfg.Words.Enabled)
	if err != nil {
		return nil, err
	}

	lines, source := p.lineSource(page)
	texts := lineTexts(lines)

	name := TournamentName(strings.Split(page.Text, "\n"), p.cfg.Metadata.TournamentKeywords, p.cfg.Metadata.UnknownTournament)
	td = bracket.New(name, category, p.cfg.Bracket.Size)
	td.CategoryInfo = ParseCategoryInfo(search)
	td.PageNumber = page.Index + 1
	td.Source = source

	logger.Info("tournament identified", logger.Fields{
		"tournament": name,
		"category":   category,
		"source":     source,
		"lines":      len(lines),
	})

	layout := ScoreLayout{
		Rows:      make(map[int]Row),
		Tolerance: p.cfg.Bracket.ScoreRowTolerance,
	}
	if h := HeaderIndex(texts, p.cfg.Segment.HeaderLabels); h >= 0 {
		layout.MinX = nameColumnEnd(lines[h], p.cfg.Segment.HeaderLabels)
	}

	for _, c := range CandidateLines(texts, p.cfg.Segment) {
		drawNo, ok := DrawNumber(c.Text)
		if !ok || drawNo < 1 || drawNo > td.BracketSize {
			logger.IncrCounter("lines.skipped")
			logger.Debug("line skipped", logger.Fields{"line": c.Index, "text": c.Text})
			continue
		}
		player, ok := ExtractPlayer(drawNo, c.Text)
		if !ok {
			logger.IncrCounter("lines.skipped")
			logger.Debug("no player recognized", logger.Fields{"line": c.Index, "draw_no": drawNo, "text": c.Text})
			continue
		}
		if !td.AddPlayer(player) {
			logger.Debug("duplicate draw number ignored", logger.Fields{"line": c.Index, "draw_no": drawNo})
			continue
		}
		logger.IncrCounter("players.recognized")

		if l := lines[c.Index]; l.HasPosition() {
			layout.Rows[drawNo] = Row{Top: l.Band.Top, Bottom: l.Band.Bottom()}
		}
	}

	logger.Info("players extracted", logger.Fields{
		"players": td.PlayerCount(),
		"byes":    td.ByeCount(),
	})

	matches, err := BuildFirstRound(td.Players, td.BracketSize)
	if err != nil {
		return nil, err
	}
	td.Matches = matches

	td.Scores = DetectScores(lines)
	logger.AddCounter("scores.detected", int64(len(td.Scores)))
	bound := AssociateScores(td.Matches, td.Scores, layout)
	logger.AddCounter("scores.bound", int64(bound))

	td.PointConfirmations = ConfirmPoints(lines, p.cfg.Bracket.Placements)
	for _, pc := range td.PointConfirmations {
		logger.Debug("placement points confirmed", logger.Fields{
			"label":  pc.Label,
			"points": pc.Points,
			"line":   pc.Line,
		})
	}

	winner := BindWinner(td.Players, lines, WinnerOptions{
		Marker:      p.cfg.Bracket.WinnerMarker,
		MaxDistance: p.cfg.Bracket.MaxWinnerDistance,
	})
	if winner != nil {
		td.SetWinner(winner)
		logger.Info("winner identified", logger.Fields{"draw_no": winner.DrawNo, "name": winner.Name})
	} else {
		logger.Debug("winner unresolved", nil)
	}

	logger.Info("bracket extracted", logger.Fields{
		"matches": len(td.Matches),
		"scores":  len(td.Scores),
		"bound":   bound,
	})
	return td, nil
}

// lineSource prefers word bands and falls back to the page text when words
// are missing or do not reveal the roster header.
func (p *Parser) lineSource(page *LocatedPage) ([]LineRecord, string) {
	textLines := TextLines(page.Text)
	if len(page.Words) == 0 {
		return textLines, SourceText
	}

	wordLines := WordLines(page.Words, p.cfg.Words.YTolerance, p.cfg.Words.SegmentGap)
	labels := p.cfg.Segment.HeaderLabels
	if HeaderIndex(lineTexts(wordLines), labels) < 0 && HeaderIndex(lineTexts(textLines), labels) >= 0 {
		logger.Warn("roster header only found in text lines, ignoring word positions", nil)
		return textLines, SourceText
	}
	return wordLines, SourceWords
}

// nameColumnEnd returns the right edge of the header word carrying the last
// label. Scores are drawn to the right of it.
func nameColumnEnd(header LineRecord, labels []string) float64 {
	if !header.HasPosition() || len(labels) == 0 {
		return 0
	}
	last := labels[len(labels)-1]
	for _, w := range header.Band.Words {
		if strings.Contains(w.Text, last) {
			return w.X1
		}
	}
	return 0
}
