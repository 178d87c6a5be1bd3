package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/logger"
)

var (
	scorePattern    = regexp.MustCompile(`^\d+\s+\d+(?:\s*\(\d+\))?$|^W\.O\.$`)
	walkoverPattern = regexp.MustCompile(`^W\.O\.$`)
)

func isScore(s string) bool {
	return scorePattern.MatchString(strings.TrimSpace(s))
}

// BuildFirstRound pairs the players of the first round. A pairing with a
// missing side produces no match; a pairing against a bye is decided at once.
func BuildFirstRound(players map[int]*bracket.Player, size int) ([]*bracket.Match, error) {
	pairs, err := bracket.FirstRoundPairs(size)
	if err != nil {
		return nil, err
	}

	matches := make([]*bracket.Match, 0, len(pairs))
	for _, pair := range pairs {
		p1, p2 := players[pair[0]], players[pair[1]]
		if p1 == nil || p2 == nil {
			continue
		}

		m := &bracket.Match{
			Round:         bracket.RoundFirst,
			Player1DrawNo: p1.DrawNo,
			Player2DrawNo: p2.DrawNo,
		}
		if p1.IsBye != p2.IsBye {
			winner := p1.DrawNo
			if p1.IsBye {
				winner = p2.DrawNo
			}
			if err := m.SetWinner(winner); err != nil {
				return nil, err
			}
			m.Score = bracket.ScoreBye
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// DetectScores finds score-shaped text. Lines with coordinates are tested
// segment by segment; plain text lines are tested whole.
func DetectScores(lines []LineRecord) []bracket.ScoreSignal {
	signals := []bracket.ScoreSignal{}
	for _, line := range lines {
		if !line.HasPosition() {
			text := strings.TrimSpace(line.Text)
			if isScore(text) {
				signals = append(signals, bracket.ScoreSignal{
					Text:       text,
					Line:       line.Index,
					IsWalkover: walkoverPattern.MatchString(text),
					MatchIndex: -1,
				})
			}
			continue
		}

		for _, seg := range line.Segments {
			text := strings.TrimSpace(seg.Text)
			if !isScore(text) {
				continue
			}
			signals = append(signals, bracket.ScoreSignal{
				Text:        text,
				Line:        line.Index,
				X0:          seg.X0,
				Top:         seg.Top,
				HasPosition: true,
				IsWalkover:  walkoverPattern.MatchString(text),
				MatchIndex:  -1,
			})
		}
	}
	return signals
}

// Row is the vertical extent of a roster row.
type Row struct {
	Top    float64
	Bottom float64
}

// ScoreLayout carries the geometry AssociateScores needs.
type ScoreLayout struct {
	Rows      map[int]Row // by draw number
	MinX      float64     // scores must start right of this x
	Tolerance float64     // widens every match span vertically
}

// AssociateScores binds score signals to first-round matches by position.
// A signal qualifies for a match when its top lies inside that match's span
// and no other, and it sits right of MinX. For each match only the leftmost
// qualifying signal is bound; bye matches never take a score. Every other
// signal keeps MatchIndex -1. It returns the number of bound signals.
func AssociateScores(matches []*bracket.Match, scores []bracket.ScoreSignal, layout ScoreLayout) int {
	type span struct{ top, bottom float64 }

	spans := make([]*span, len(matches))
	for i, m := range matches {
		r1, ok1 := layout.Rows[m.Player1DrawNo]
		r2, ok2 := layout.Rows[m.Player2DrawNo]
		if !ok1 || !ok2 {
			continue
		}
		spans[i] = &span{
			top:    math.Min(r1.Top, r2.Top) - layout.Tolerance,
			bottom: math.Max(r1.Bottom, r2.Bottom) + layout.Tolerance,
		}
	}

	best := make(map[int]int) // match index -> score index
	for si := range scores {
		s := &scores[si]
		s.MatchIndex = -1
		if !s.HasPosition || s.X0 <= layout.MinX {
			continue
		}

		hit := -1
		for mi, sp := range spans {
			if sp == nil || s.Top < sp.top || s.Top > sp.bottom {
				continue
			}
			if hit >= 0 {
				hit = -2
				break
			}
			hit = mi
		}
		if hit < 0 || matches[hit].IsBye() {
			continue
		}

		if prev, ok := best[hit]; !ok || s.X0 < scores[prev].X0 {
			best[hit] = si
		}
	}

	for mi, si := range best {
		scores[si].MatchIndex = mi
		matches[mi].Score = scores[si].Text
		matches[mi].IsWalkover = scores[si].IsWalkover
	}

	for _, s := range scores {
		if !s.Resolved() {
			logger.Debug("score left unresolved", logger.Fields{
				"score":        s.Text,
				"line":         s.Line,
				"has_position": s.HasPosition,
			})
		}
	}
	return len(best)
}
