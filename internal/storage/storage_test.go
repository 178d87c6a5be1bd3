package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
)

func sampleData() *bracket.TournamentData {
	td := bracket.New("第30回 全日本ベテランテニス大会", "男子シングルス 35歳以上", 4)
	td.PageNumber = 3
	td.Source = "words"
	td.CategoryInfo = bracket.CategoryInfo{Gender: "male", Event: "singles", AgeGroup: 35, Code: "gs35"}

	champion := &bracket.Player{DrawNo: 1, RegistrationNo: "G1000001", Seed: "1", Name: "田中 太郎", Club: "東京クラブ", Prefecture: "東京都"}
	td.AddPlayer(champion)
	td.AddPlayer(bracket.NewBye(2))
	td.AddPlayer(&bracket.Player{DrawNo: 3, Name: "鈴木 一郎"})
	td.AddPlayer(&bracket.Player{DrawNo: 4, Name: "佐藤 次郎", Club: "京都クラブ"})

	td.Matches = []*bracket.Match{
		{Round: bracket.RoundFirst, Player1DrawNo: 1, Player2DrawNo: 2, WinnerDrawNo: 1, Score: bracket.ScoreBye},
		{Round: bracket.RoundFirst, Player1DrawNo: 3, Player2DrawNo: 4, Score: "6 3"},
	}
	td.Scores = []bracket.ScoreSignal{{Text: "6 3", Line: 7, X0: 300, Top: 150, HasPosition: true, MatchIndex: 1}}
	td.SetWinner(champion)
	return td
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"男子シングルス 35歳以上", "tournament_男子シングルス_35歳以上.json"},
		{"男子/女子 混合", "tournament_男子_女子_混合.json"},
		{"gs35", "tournament_gs35.json"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := OutputFileName(tt.category); got != tt.want {
				t.Errorf("OutputFileName(%q) = %q, want %q", tt.category, got, tt.want)
			}
		})
	}
}

func TestSaveResult_NullsAndFields(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := s.SaveResult(sampleData())
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if filepath.Base(path) != "tournament_男子シングルス_35歳以上.json" {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	for _, key := range []string{"tournament", "category", "players", "matches", "winner", "category_info", "final_standings", "scores", "source"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	if raw["winner"] != "田中 太郎" {
		t.Errorf("winner = %v", raw["winner"])
	}

	players := raw["players"].([]interface{})
	bye := players[1].(map[string]interface{})
	for _, key := range []string{"registration_no", "seed", "name", "club"} {
		v, ok := bye[key]
		if !ok || v != nil {
			t.Errorf("bye %s = %v (present %v), want null", key, v, ok)
		}
	}
	if bye["is_bye"] != true {
		t.Errorf("bye is_bye = %v", bye["is_bye"])
	}

	matches := raw["matches"].([]interface{})
	open := matches[1].(map[string]interface{})
	if v, ok := open["winner_draw_no"]; !ok || v != nil {
		t.Errorf("undecided winner_draw_no = %v, want null", v)
	}
}

func TestSaveResult_NoWinner(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	td := bracket.New("不明な大会", "女子ダブルス 70歳以上", 16)
	path, err := s.SaveResult(td)
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if v, ok := raw["winner"]; !ok || v != nil {
		t.Errorf("winner = %v, want null", v)
	}
	if players := raw["players"].([]interface{}); len(players) != 0 {
		t.Errorf("players = %v, want empty list", players)
	}
}

func TestLoadResult_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	td := sampleData()
	if _, err := s.SaveResult(td); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	got, err := s.LoadResult(td.Category)
	if err != nil {
		t.Fatalf("LoadResult() error = %v", err)
	}

	if got.Tournament != td.TournamentName || got.Category != td.Category {
		t.Errorf("header = %q / %q", got.Tournament, got.Category)
	}
	if len(got.Players) != 4 || *got.Players[0].Name != "田中 太郎" || *got.Players[0].Prefecture != "東京都" {
		t.Errorf("players = %+v", got.Players)
	}
	if got.Players[1].Name != nil || !got.Players[1].IsBye {
		t.Errorf("bye = %+v", got.Players[1])
	}
	if len(got.Matches) != 2 || *got.Matches[0].WinnerDrawNo != 1 || *got.Matches[1].Score != "6 3" {
		t.Errorf("matches = %+v", got.Matches)
	}
	if got.Winner == nil || *got.Winner != "田中 太郎" {
		t.Errorf("winner = %v", got.Winner)
	}
	if names := got.FinalStandings[bracket.PlacementChampion]; len(names) != 1 || names[0] != "田中 太郎" {
		t.Errorf("standings = %v", got.FinalStandings)
	}
	if len(got.Scores) != 1 || got.Scores[0].MatchIndex != 1 {
		t.Errorf("scores = %+v", got.Scores)
	}
	if got.CategoryInfo.Code != "gs35" || got.Source != "words" || got.PageNumber != 3 {
		t.Errorf("metadata = %+v / %q / %d", got.CategoryInfo, got.Source, got.PageNumber)
	}
	if got.GeneratedAt == "" {
		t.Errorf("GeneratedAt not set")
	}
}

func TestSaveResult_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// A directory occupying the target name makes the final rename fail.
	td := sampleData()
	if err := os.Mkdir(s.Path(td.Category), 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Path(td.Category), "keep"), []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := s.SaveResult(td); err == nil {
		t.Fatal("expected SaveResult to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("temporary files left behind: %v", names)
	}
}

func TestLoadResultFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadResultFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := LoadResultFile(bad); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := New(dir); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestPostgresSink(t *testing.T) {
	dsn := os.Getenv("BRACKET_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BRACKET_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	sink, err := NewPostgresSink(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresSink() error = %v", err)
	}
	defer sink.Close()

	td := sampleData()
	id, err := sink.Store(ctx, td)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	// Storing again replaces rows instead of duplicating them.
	again, err := sink.Store(ctx, td)
	if err != nil {
		t.Fatalf("second Store() error = %v", err)
	}
	if again != id {
		t.Errorf("tournament id changed: %d -> %d", id, again)
	}

	n, err := sink.CountPlayers(ctx, id)
	if err != nil {
		t.Fatalf("CountPlayers() error = %v", err)
	}
	if n != 4 {
		t.Errorf("players stored = %d, want 4", n)
	}
}

func TestNewPostgresSink_EmptyDSN(t *testing.T) {
	if _, err := NewPostgresSink(context.Background(), ""); err == nil {
		t.Error("expected error for empty DSN")
	}
}
