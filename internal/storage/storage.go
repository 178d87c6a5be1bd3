package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
)

// Result is the JSON document written for one parsed category. Optional
// player and match fields are pointers so missing values encode as null.
type Result struct {
	Tournament string         `json:"tournament"`
	Category   string         `json:"category"`
	Players    []PlayerRecord `json:"players"`
	Matches    []MatchRecord  `json:"matches"`
	Winner     *string        `json:"winner"`

	CategoryInfo   bracket.CategoryInfo  `json:"category_info"`
	FinalStandings map[string][]string   `json:"final_standings"`
	Scores         []bracket.ScoreSignal `json:"scores"`
	Source         string                `json:"source"`
	PageNumber     int                   `json:"page_number"`
	BracketSize    int                   `json:"bracket_size"`
	GeneratedAt    string                `json:"generated_at"`
}

type PlayerRecord struct {
	DrawNo         int     `json:"draw_no"`
	RegistrationNo *string `json:"registration_no"`
	Seed           *string `json:"seed"`
	Name           *string `json:"name"`
	Club           *string `json:"club"`
	IsBye          bool    `json:"is_bye"`
	Prefecture     *string `json:"prefecture"`
}

type MatchRecord struct {
	Round         string  `json:"round"`
	Player1DrawNo int     `json:"player1_draw_no"`
	Player2DrawNo int     `json:"player2_draw_no"`
	WinnerDrawNo  *int    `json:"winner_draw_no"`
	Score         *string `json:"score"`
	IsWalkover    bool    `json:"is_walkover"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewResult converts parsed data into its output document.
func NewResult(td *bracket.TournamentData) *Result {
	r := &Result{
		Tournament:     td.TournamentName,
		Category:       td.Category,
		Players:        make([]PlayerRecord, 0, len(td.Players)),
		Matches:        make([]MatchRecord, 0, len(td.Matches)),
		CategoryInfo:   td.CategoryInfo,
		FinalStandings: make(map[string][]string, len(td.FinalStandings)),
		Scores:         td.Scores,
		Source:         td.Source,
		PageNumber:     td.PageNumber,
		BracketSize:    td.BracketSize,
	}
	if r.Scores == nil {
		r.Scores = []bracket.ScoreSignal{}
	}

	for _, p := range td.SortedPlayers() {
		r.Players = append(r.Players, PlayerRecord{
			DrawNo:         p.DrawNo,
			RegistrationNo: nullable(p.RegistrationNo),
			Seed:           nullable(p.Seed),
			Name:           nullable(p.Name),
			Club:           nullable(p.Club),
			IsBye:          p.IsBye,
			Prefecture:     nullable(p.Prefecture),
		})
	}

	for _, m := range td.Matches {
		rec := MatchRecord{
			Round:         string(m.Round),
			Player1DrawNo: m.Player1DrawNo,
			Player2DrawNo: m.Player2DrawNo,
			Score:         nullable(m.Score),
			IsWalkover:    m.IsWalkover,
		}
		if m.HasWinner() {
			w := m.WinnerDrawNo
			rec.WinnerDrawNo = &w
		}
		r.Matches = append(r.Matches, rec)
	}

	if td.Winner != nil {
		r.Winner = nullable(td.Winner.Name)
	}

	for label, players := range td.FinalStandings {
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.Name)
		}
		r.FinalStandings[label] = names
	}
	return r
}

// OutputFileName derives the result file name from a category label.
func OutputFileName(category string) string {
	name := strings.NewReplacer(" ", "_", "/", "_").Replace(category)
	return fmt.Sprintf("tournament_%s.json", name)
}

// Storage writes result documents into one directory.
type Storage struct {
	outDir string
}

// New creates a Storage for outDir, creating the directory when needed.
func New(outDir string) (*Storage, error) {
	if outDir == "" {
		outDir = "."
	}
	if strings.HasPrefix(outDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		outDir = filepath.Join(home, outDir[2:])
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{outDir: outDir}, nil
}

// Path returns where the result for category is written.
func (s *Storage) Path(category string) string {
	return filepath.Join(s.outDir, OutputFileName(category))
}

// SaveResult writes the result for td and returns the file path. The file is
// written to a temporary name first and renamed into place, so a failed
// write never leaves a partial result behind.
func (s *Storage) SaveResult(td *bracket.TournamentData) (string, error) {
	result := NewResult(td)
	result.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	path := s.Path(td.Category)
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}
	return path, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// LoadResult reads the result previously written for category.
func (s *Storage) LoadResult(category string) (*Result, error) {
	return LoadResultFile(s.Path(category))
}

// LoadResultFile reads a result document from path.
func LoadResultFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}

	if result.FinalStandings == nil {
		result.FinalStandings = make(map[string][]string)
	}
	return &result, nil
}
