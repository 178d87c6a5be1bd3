package config

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"gopkg.in/yaml.v3"
)

// DefaultCategory is the category parsed when none is given on the command line.
const DefaultCategory = "男子シングルス 35歳以上"

// Config holds everything the extractor can be tuned with.
type Config struct {
	Category string         `yaml:"category"`
	Backend  string         `yaml:"backend"` // "tabula" or "ledongthuc"
	OutDir   string         `yaml:"out_dir"`
	Bracket  BracketConfig  `yaml:"bracket"`
	Segment  SegmentConfig  `yaml:"segment"`
	Words    WordsConfig    `yaml:"words"`
	Metadata MetadataConfig `yaml:"metadata"`
	Postgres PostgresConfig `yaml:"postgres"`
	Log      LogConfig      `yaml:"log"`
}

type BracketConfig struct {
	Size int `yaml:"size"` // draw size, a power of two
	// Placements lists placement labels with the points awarded for them.
	// Order matters: the first entry whose label and points both appear on a line wins.
	Placements []Placement `yaml:"placements"`
	// WinnerMarker is the text printed next to the champion in the bracket.
	WinnerMarker string `yaml:"winner_marker"`
	// MaxWinnerDistance bounds the marker-to-name distance in points.
	MaxWinnerDistance float64 `yaml:"max_winner_distance"`
	// ScoreRowTolerance widens a match's vertical span when binding scores.
	ScoreRowTolerance float64 `yaml:"score_row_tolerance"`
}

type Placement struct {
	Label  string `yaml:"label"`
	Points int    `yaml:"points"`
}

type SegmentConfig struct {
	HeaderLabels    []string `yaml:"header_labels"`
	TrailerKeywords []string `yaml:"trailer_keywords"`
	Lookahead       int      `yaml:"lookahead"`
}

type WordsConfig struct {
	Enabled        bool    `yaml:"enabled"` // prefer coordinate-tagged words over plain text lines
	XTolerance     float64 `yaml:"x_tolerance"`
	YTolerance     float64 `yaml:"y_tolerance"`
	KeepBlankChars bool    `yaml:"keep_blank_chars"`
	SegmentGap     float64 `yaml:"segment_gap"` // horizontal gap that splits a band into segments
}

type MetadataConfig struct {
	TournamentKeywords []string `yaml:"tournament_keywords"`
	UnknownTournament  string   `yaml:"unknown_tournament"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration matching the JTA veterans result sheets.
func Default() *Config {
	return &Config{
		Category: DefaultCategory,
		Backend:  "tabula",
		OutDir:   ".",
		Bracket: BracketConfig{
			Size: 16,
			Placements: []Placement{
				{Label: "優勝", Points: 1279},
				{Label: "準優勝", Points: 895},
				{Label: "ベスト4", Points: 625},
				{Label: "ベスト8", Points: 438},
			},
			WinnerMarker:      "WINNER",
			MaxWinnerDistance: 120,
			ScoreRowTolerance: 4,
		},
		Segment: SegmentConfig{
			HeaderLabels:    []string{"登録No", "Seed", "Name"},
			TrailerKeywords: []string{"優勝", "準優勝", "ベスト", "WINNER"},
			Lookahead:       50,
		},
		Words: WordsConfig{
			Enabled:        true,
			XTolerance:     3,
			YTolerance:     3,
			KeepBlankChars: false,
			SegmentGap:     12,
		},
		Metadata: MetadataConfig{
			TournamentKeywords: []string{"ベテランテニス", "大会"},
			UnknownTournament:  "不明な大会",
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads a YAML file on top of Default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make parsing meaningless.
func (c *Config) Validate() error {
	if err := bracket.ValidateSize(c.Bracket.Size); err != nil {
		return err
	}
	if len(c.Segment.HeaderLabels) == 0 {
		return fmt.Errorf("segment.header_labels must not be empty")
	}
	if c.Segment.Lookahead <= 0 {
		return fmt.Errorf("segment.lookahead must be positive, got %d", c.Segment.Lookahead)
	}
	switch c.Backend {
	case "tabula", "ledongthuc":
	default:
		return fmt.Errorf("unknown backend: %q (must be 'tabula' or 'ledongthuc')", c.Backend)
	}
	if c.Words.XTolerance < 0 || c.Words.YTolerance < 0 {
		return fmt.Errorf("word tolerances must not be negative")
	}
	return nil
}
