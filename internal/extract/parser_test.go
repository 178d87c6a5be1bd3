package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/config"
	"github.com/pfrederiksen/bracket-extract/internal/logger"
	"github.com/pfrederiksen/bracket-extract/internal/pdfsource"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Bracket.Size = 4
	return cfg
}

const categoryPageText = `第30回 全日本ベテランテニス大会
男⼦シングルス 35歳以上
No 登録No Seed Name 所属
1 シード1 G1000001 田中 太郎 東京クラブ
2 bye
3 G1000003 鈴木 一郎 大阪TC
4 G1000004 佐藤 次郎 京都クラブ
6 3
WINNER 田中 太郎
優勝 1279`

func TestParser_TextPath(t *testing.T) {
	logger.DefaultMetrics().Reset()
	doc := &fakeDocument{pages: []string{"表紙", categoryPageText}}

	td, err := NewParser(smallConfig()).Parse(doc, "男子シングルス 35歳以上")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if td.TournamentName != "第30回 全日本ベテランテニス大会" {
		t.Errorf("TournamentName = %q", td.TournamentName)
	}
	if td.PageNumber != 2 || td.Source != SourceText {
		t.Errorf("PageNumber = %d, Source = %q", td.PageNumber, td.Source)
	}
	if td.CategoryInfo.Code != "gs35" {
		t.Errorf("CategoryInfo = %+v", td.CategoryInfo)
	}
	if len(td.Players) != 4 || td.PlayerCount() != 3 || td.ByeCount() != 1 {
		t.Fatalf("players = %d (real %d, byes %d)", len(td.Players), td.PlayerCount(), td.ByeCount())
	}
	if p := td.Player(1); p.Seed != "1" || p.Club != "東京クラブ" || p.Prefecture != "東京都" {
		t.Errorf("player 1 = %+v", p)
	}

	if len(td.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(td.Matches))
	}
	if m := td.Matches[0]; m.WinnerDrawNo != 1 || !m.IsBye() {
		t.Errorf("match 0 = %+v", m)
	}
	if m := td.Matches[1]; m.HasWinner() || m.Score != "" {
		t.Errorf("match 1 = %+v", m)
	}

	if len(td.Scores) != 1 || td.Scores[0].Resolved() {
		t.Errorf("scores = %+v, want one unresolved signal", td.Scores)
	}
	if td.Winner == nil || td.Winner.DrawNo != 1 {
		t.Errorf("Winner = %+v", td.Winner)
	}
	if got := td.FinalStandings[bracket.PlacementChampion]; len(got) != 1 || got[0].DrawNo != 1 {
		t.Errorf("champion standings = %+v", got)
	}
	for _, label := range bracket.PlacementLabels {
		if _, ok := td.FinalStandings[label]; !ok {
			t.Errorf("standings missing %q", label)
		}
	}
	if len(td.PointConfirmations) != 1 || td.PointConfirmations[0].Label != "優勝" {
		t.Errorf("PointConfirmations = %+v", td.PointConfirmations)
	}

	if got := logger.DefaultMetrics().Counter("players.recognized"); got != 4 {
		t.Errorf("players.recognized = %d, want 4", got)
	}
	if got := logger.DefaultMetrics().Counter("lines.skipped"); got != 1 {
		t.Errorf("lines.skipped = %d, want 1", got)
	}
}

func categoryPageWords() []pdfsource.Word {
	return []pdfsource.Word{
		word("No", 30, 60), word("登録No", 60, 60), word("Seed", 130, 60), word("Name", 180, 60), word("所属", 260, 60),

		word("1", 30, 100), word("G1000001", 50, 100), word("1", 140, 100),
		word("田中", 180, 100), word("太郎", 205, 100), word("東京クラブ", 260, 100),

		word("6", 300, 115), word("3", 312, 115),

		word("2", 30, 130), word("G1000002", 50, 130),
		word("鈴木", 180, 130), word("一郎", 205, 130), word("大阪TC", 260, 130),

		word("WINNER", 500, 140), word("田中", 560, 140), word("太郎", 585, 140),

		word("6", 400, 150), word("0", 412, 150),

		word("3", 30, 160), word("L1000003", 50, 160),
		word("佐藤", 180, 160), word("花子", 205, 160), word("京都クラブ", 260, 160),

		word("7", 300, 175), word("5", 312, 175),

		word("4", 30, 190), word("G1000004", 50, 190),
		word("山田", 180, 190), word("一郎", 205, 190), word("横浜クラブ", 260, 190),

		word("優勝", 30, 230), word("1279", 70, 230),
	}
}

func TestParser_WordPath(t *testing.T) {
	logger.DefaultMetrics().Reset()
	doc := &fakeDocument{
		pages: []string{"表紙", categoryPageText},
		words: map[int][]pdfsource.Word{1: categoryPageWords()},
	}

	td, err := NewParser(smallConfig()).Parse(doc, "男子シングルス 35歳以上")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if td.Source != SourceWords {
		t.Fatalf("Source = %q, want %q", td.Source, SourceWords)
	}

	if td.PlayerCount() != 4 || td.ByeCount() != 0 {
		t.Fatalf("players = %+v", td.SortedPlayers())
	}
	if p := td.Player(1); p.Seed != "1" || p.RegistrationNo != "G1000001" || p.Name != "田中 太郎" {
		t.Errorf("player 1 = %+v", p)
	}
	if p := td.Player(3); p.RegistrationNo != "L1000003" || p.Club != "京都クラブ" || p.Prefecture != "京都府" {
		t.Errorf("player 3 = %+v", p)
	}

	if td.Matches[0].Score != "6 3" || td.Matches[1].Score != "7 5" {
		t.Errorf("match scores = %q, %q", td.Matches[0].Score, td.Matches[1].Score)
	}

	resolved := 0
	for _, s := range td.Scores {
		if s.Resolved() {
			resolved++
		} else if s.Text != "6 0" {
			t.Errorf("unexpected unresolved score %+v", s)
		}
	}
	if len(td.Scores) != 3 || resolved != 2 {
		t.Errorf("scores = %+v", td.Scores)
	}

	if td.Winner == nil || td.Winner.DrawNo != 1 {
		t.Errorf("Winner = %+v", td.Winner)
	}

	if got := logger.DefaultMetrics().Counter("scores.bound"); got != 2 {
		t.Errorf("scores.bound = %d, want 2", got)
	}
}

func TestParser_WordsWithoutHeaderFallBackToText(t *testing.T) {
	doc := &fakeDocument{
		pages: []string{categoryPageText},
		words: map[int][]pdfsource.Word{0: {word("ノイズ", 10, 10)}},
	}

	td, err := NewParser(smallConfig()).Parse(doc, "男子シングルス 35歳以上")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if td.Source != SourceText || len(td.Players) != 4 {
		t.Errorf("Source = %q, players = %d", td.Source, len(td.Players))
	}
}

func TestParser_DefaultCategory(t *testing.T) {
	doc := &fakeDocument{pages: []string{categoryPageText}}

	td, err := NewParser(smallConfig()).Parse(doc, "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if td.Category != config.DefaultCategory {
		t.Errorf("Category = %q", td.Category)
	}
}

func TestParser_KeepsCategoryAsGiven(t *testing.T) {
	doc := &fakeDocument{pages: []string{categoryPageText}}
	raw := "男⼦シングルス　35歳以上"

	td, err := NewParser(smallConfig()).Parse(doc, raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if td.Category != raw {
		t.Errorf("Category = %q, want the label as passed %q", td.Category, raw)
	}
	if td.CategoryInfo.Code != "gs35" {
		t.Errorf("CategoryInfo.Code = %q, want gs35", td.CategoryInfo.Code)
	}
	if td.PlayerCount() != 3 {
		t.Errorf("PlayerCount() = %d, want 3", td.PlayerCount())
	}
}

func TestParser_NoHeaderYieldsEmptyBracket(t *testing.T) {
	doc := &fakeDocument{pages: []string{"男子シングルス 35歳以上\n1 田中 太郎"}}

	td, err := NewParser(smallConfig()).Parse(doc, "男子シングルス 35歳以上")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(td.Players) != 0 || len(td.Matches) != 0 || td.Winner != nil {
		t.Errorf("expected empty bracket, got %+v", td)
	}
	if td.TournamentName != "不明な大会" {
		t.Errorf("TournamentName = %q", td.TournamentName)
	}
}

func TestParser_ParseCategory(t *testing.T) {
	doc := &fakeDocument{pages: []string{"表紙"}}
	p := NewParser(smallConfig()).WithOpener(func(backend, path string) (pdfsource.Document, error) {
		if backend != pdfsource.BackendTabula {
			t.Errorf("backend = %q", backend)
		}
		return doc, nil
	})

	_, err := p.ParseCategory("results.pdf", "男子シングルス 35歳以上")
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("error = %v, want ErrCategoryNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Category != "男子シングルス 35歳以上" {
		t.Errorf("error = %v, want NotFoundError for the category", err)
	}
	if !doc.closed {
		t.Errorf("document not closed after failure")
	}
}

func TestParser_ParseCategoryOpenError(t *testing.T) {
	openErr := errors.New("not a pdf")
	p := NewParser(nil).WithOpener(func(string, string) (pdfsource.Document, error) {
		return nil, openErr
	})

	_, err := p.ParseCategory("broken.pdf", "")
	if !errors.Is(err, openErr) {
		t.Errorf("error = %v, want wrapped open error", err)
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestParser_RecoversBackendPanic(t *testing.T) {
	logger.SetDefault(logger.Discard())
	doc := &fakeDocument{pages: []string{"x"}, panicMsg: "corrupt xref"}
	p := NewParser(smallConfig()).WithOpener(func(string, string) (pdfsource.Document, error) {
		return doc, nil
	})

	td, err := p.ParseCategory("corrupt.pdf", "男子シングルス 35歳以上")
	if err == nil || td != nil {
		t.Fatalf("expected error, got %+v, %v", td, err)
	}
	if !strings.Contains(err.Error(), "corrupt xref") {
		t.Errorf("error = %v", err)
	}
	if !doc.closed {
		t.Errorf("document not closed after panic")
	}
}
