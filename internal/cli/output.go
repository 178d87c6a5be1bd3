package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Summary is what the parse command reports on stdout.
type Summary struct {
	Tournament     string              `json:"tournament"`
	Category       string              `json:"category"`
	CategoryCode   string              `json:"category_code,omitempty"`
	PageNumber     int                 `json:"page_number"`
	Source         string              `json:"source"`
	PlayerCount    int                 `json:"player_count"`
	ByeCount       int                 `json:"bye_count"`
	MatchCount     int                 `json:"match_count"`
	ScoresDetected int                 `json:"scores_detected"`
	ScoresBound    int                 `json:"scores_bound"`
	Winner         string              `json:"winner,omitempty"`
	Standings      map[string][]string `json:"final_standings"`
	OutputFile     string              `json:"output_file"`
	Changes        []storage.Change    `json:"changes,omitempty"`

	data *bracket.TournamentData
}

// NewSummary condenses a parse result.
func NewSummary(td *bracket.TournamentData, outputFile string) *Summary {
	s := &Summary{
		Tournament:     td.TournamentName,
		Category:       td.Category,
		CategoryCode:   td.CategoryInfo.Code,
		PageNumber:     td.PageNumber,
		Source:         td.Source,
		PlayerCount:    td.PlayerCount(),
		ByeCount:       td.ByeCount(),
		MatchCount:     len(td.Matches),
		ScoresDetected: len(td.Scores),
		Standings:      make(map[string][]string, len(td.FinalStandings)),
		OutputFile:     outputFile,
		data:           td,
	}
	for _, sc := range td.Scores {
		if sc.Resolved() {
			s.ScoresBound++
		}
	}
	if td.Winner != nil {
		s.Winner = td.Winner.Name
	}
	for label, players := range td.FinalStandings {
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.Name)
		}
		s.Standings[label] = names
	}
	return s
}

// WriteOutput writes the summary in the specified format
func WriteOutput(w io.Writer, s *Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeText(w, s)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText prints the summary followed by the draw, one line per position.
func writeText(w io.Writer, s *Summary) error {
	fmt.Fprintln(w, "=== 解析結果 ===")
	fmt.Fprintf(w, "大会名: %s\n", s.Tournament)
	fmt.Fprintf(w, "カテゴリ: %s (ページ %d)\n", s.Category, s.PageNumber)
	fmt.Fprintf(w, "選手数: %d\n", s.PlayerCount)
	fmt.Fprintf(w, "bye数: %d\n", s.ByeCount)
	fmt.Fprintf(w, "試合数: %d\n", s.MatchCount)
	fmt.Fprintf(w, "スコア: %d 件検出 / %d 件対応\n", s.ScoresDetected, s.ScoresBound)
	if s.Winner != "" {
		fmt.Fprintf(w, "\n優勝者: %s\n", s.Winner)
	}

	if s.data != nil {
		fmt.Fprintln(w, "\n【選手一覧】")
		for drawNo := 1; drawNo <= s.data.BracketSize; drawNo++ {
			p := s.data.Player(drawNo)
			switch {
			case p == nil:
				fmt.Fprintf(w, "  %2d: [未登録]\n", drawNo)
			case p.IsBye:
				fmt.Fprintf(w, "  %2d: bye\n", drawNo)
			default:
				seed := p.Seed
				if seed == "" {
					seed = "なし"
				}
				fmt.Fprintf(w, "  %2d: %s  %s  [シード: %s]\n", drawNo, p.Name, p.Club, seed)
			}
		}
	}

	if len(s.Changes) > 0 {
		fmt.Fprintf(w, "\n【前回からの変更】 %d 件\n", len(s.Changes))
		for _, c := range s.Changes {
			fmt.Fprintf(w, "  %s %s: %q -> %q\n", c.Key, c.ChangeType, c.OldValue, c.NewValue)
		}
	}

	if s.OutputFile != "" {
		fmt.Fprintf(w, "\n結果を %s に保存しました。\n", s.OutputFile)
	}
	return nil
}
