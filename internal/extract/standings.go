package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/config"
	"github.com/pfrederiksen/bracket-extract/internal/logger"
	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

// ConfirmPoints records lines on which a placement label and its point value
// both appear. Placements are tried in order and at most one is taken per line.
func ConfirmPoints(lines []LineRecord, placements []config.Placement) []bracket.PointConfirmation {
	confirmations := []bracket.PointConfirmation{}
	for _, line := range lines {
		for _, pl := range placements {
			if strings.Contains(line.Text, pl.Label) && strings.Contains(line.Text, strconv.Itoa(pl.Points)) {
				confirmations = append(confirmations, bracket.PointConfirmation{
					Label:  pl.Label,
					Points: pl.Points,
					Line:   line.Index,
				})
				break
			}
		}
	}
	return confirmations
}

// WinnerOptions configures BindWinner.
type WinnerOptions struct {
	Marker      string
	MaxDistance float64
}

type box struct {
	x0, x1, top, bottom float64
}

func (b box) center() (float64, float64) {
	return (b.x0 + b.x1) / 2, (b.top + b.bottom) / 2
}

func wordBox(w pdfsource.Word) box {
	return box{w.X0, w.X1, w.Top, w.Bottom}
}

func (b box) union(o box) box {
	return box{
		math.Min(b.x0, o.x0), math.Max(b.x1, o.x1),
		math.Min(b.top, o.top), math.Max(b.bottom, o.bottom),
	}
}

// BindWinner finds the champion next to the winner marker. With coordinates,
// the extracted player whose name lies closest to a marker wins, provided it
// is within MaxDistance and no other player is equally close. Without
// coordinates, a marker line naming exactly one player decides. Anything
// else leaves the winner unresolved and returns nil.
func BindWinner(players map[int]*bracket.Player, lines []LineRecord, opts WinnerOptions) *bracket.Player {
	if opts.Marker == "" {
		return nil
	}

	positioned := false
	for _, line := range lines {
		if !line.HasPosition() {
			continue
		}
		positioned = true
		for _, w := range line.Band.Words {
			if !strings.Contains(w.Text, opts.Marker) {
				continue
			}
			if p := nearestPlayer(players, lines, wordBox(w), opts.MaxDistance); p != nil {
				return p
			}
		}
	}
	if positioned {
		return nil
	}

	for _, line := range lines {
		if !strings.Contains(line.Text, opts.Marker) {
			continue
		}
		if p := onlyPlayerNamed(players, line.Text); p != nil {
			return p
		}
	}
	return nil
}

// nearestPlayer returns the player whose name token is closest to marker.
func nearestPlayer(players map[int]*bracket.Player, lines []LineRecord, marker box, maxDistance float64) *bracket.Player {
	mx, my := marker.center()

	var best *bracket.Player
	bestDist := math.Inf(1)
	tie := false

	consider := func(p *bracket.Player, b box) {
		cx, cy := b.center()
		d := math.Hypot(cx-mx, cy-my)
		switch {
		case d < bestDist-1e-6:
			best, bestDist, tie = p, d, false
		case math.Abs(d-bestDist) <= 1e-6 && p != best:
			tie = true
		}
	}

	for _, line := range lines {
		if !line.HasPosition() {
			continue
		}
		words := line.Band.Words
		for i, w := range words {
			b := wordBox(w)
			if b == marker {
				continue
			}
			for _, p := range players {
				if p.IsBye || p.Name == "" {
					continue
				}
				surname, given, _ := strings.Cut(p.Name, " ")
				switch {
				case strings.Contains(w.Text, surname+given):
					consider(p, b)
				case w.Text == surname && i+1 < len(words) && words[i+1].Text == given:
					consider(p, b.union(wordBox(words[i+1])))
				}
			}
		}
	}

	if best == nil || tie || bestDist > maxDistance {
		logger.Debug("winner marker without a unique nearby name", logger.Fields{
			"tie":      tie,
			"distance": bestDist,
		})
		return nil
	}
	return best
}

// onlyPlayerNamed returns the single player whose name appears in text.
func onlyPlayerNamed(players map[int]*bracket.Player, text string) *bracket.Player {
	compact := strings.ReplaceAll(text, " ", "")
	var found *bracket.Player
	for _, p := range players {
		if p.IsBye || p.Name == "" {
			continue
		}
		if strings.Contains(compact, strings.ReplaceAll(p.Name, " ", "")) {
			if found != nil {
				return nil
			}
			found = p
		}
	}
	return found
}
