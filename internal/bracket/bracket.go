package bracket

import (
	"errors"
	"fmt"
	"sort"
)

// Round identifies a bracket round.
type Round string

const (
	RoundFirst        Round = "1R"
	RoundQuarterfinal Round = "QF"
	RoundSemifinal    Round = "SF"
	RoundFinal        Round = "F"
)

// ScoreBye is the score recorded for a match decided by a bye.
const ScoreBye = "BYE"

// Placement labels used as keys of TournamentData.FinalStandings.
const (
	PlacementChampion        = "優勝"
	PlacementRunnerUp        = "準優勝"
	PlacementSemifinalist    = "ベスト4"
	PlacementQuarterfinalist = "ベスト8"
)

// PlacementLabels lists the standings keys in finishing order.
var PlacementLabels = []string{
	PlacementChampion,
	PlacementRunnerUp,
	PlacementSemifinalist,
	PlacementQuarterfinalist,
}

// Player is one draw position of a bracket.
type Player struct {
	DrawNo         int    `json:"draw_no"`
	RegistrationNo string `json:"registration_no,omitempty"`
	Seed           string `json:"seed,omitempty"`
	Name           string `json:"name,omitempty"`
	Club           string `json:"club,omitempty"`
	Prefecture     string `json:"prefecture,omitempty"`
	IsBye          bool   `json:"is_bye"`
}

// NewBye returns the placeholder for an unfilled draw position.
func NewBye(drawNo int) *Player {
	return &Player{DrawNo: drawNo, IsBye: true}
}

// Valid reports whether the record satisfies the player invariants:
// a bye carries nothing but its draw number, a real player has a name.
func (p *Player) Valid() bool {
	if p == nil || p.DrawNo < 1 {
		return false
	}
	if p.IsBye {
		return p.RegistrationNo == "" && p.Seed == "" && p.Name == "" && p.Club == "" && p.Prefecture == ""
	}
	return p.Name != ""
}

// Match is a pairing of two draw positions. Players are referenced by draw
// number so a correction to a Player never desynchronizes the match list.
type Match struct {
	Round         Round  `json:"round"`
	Player1DrawNo int    `json:"player1_draw_no"`
	Player2DrawNo int    `json:"player2_draw_no"`
	WinnerDrawNo  int    `json:"winner_draw_no,omitempty"` // 0 while unresolved
	Score         string `json:"score,omitempty"`
	IsWalkover    bool   `json:"is_walkover"`
}

// HasWinner reports whether the match has been resolved.
func (m *Match) HasWinner() bool {
	return m.WinnerDrawNo != 0
}

// SetWinner records drawNo as the winner. It refuses draw numbers not in the pairing.
func (m *Match) SetWinner(drawNo int) error {
	if drawNo != m.Player1DrawNo && drawNo != m.Player2DrawNo {
		return fmt.Errorf("draw %d is not part of match %d-%d", drawNo, m.Player1DrawNo, m.Player2DrawNo)
	}
	m.WinnerDrawNo = drawNo
	return nil
}

// IsBye reports whether the match was decided by a bye.
func (m *Match) IsBye() bool {
	return m.Score == ScoreBye
}

// ScoreSignal is a score-shaped token found on the page.
type ScoreSignal struct {
	Text        string  `json:"text"`
	Line        int     `json:"line"`
	X0          float64 `json:"x0,omitempty"`
	Top         float64 `json:"top,omitempty"`
	HasPosition bool    `json:"has_position"`
	IsWalkover  bool    `json:"is_walkover"`
	MatchIndex  int     `json:"match_index"` // index into TournamentData.Matches, -1 when unresolved
}

// Resolved reports whether the signal was bound to a match.
func (s ScoreSignal) Resolved() bool {
	return s.MatchIndex >= 0
}

// PointConfirmation records a line where a placement label and its point value were both seen.
type PointConfirmation struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
	Line   int    `json:"line"`
}

// CategoryInfo is derived from the category label, e.g. 男子シングルス 35歳以上 -> gs35.
type CategoryInfo struct {
	Gender   string `json:"gender,omitempty"` // "male" or "female"
	Event    string `json:"event,omitempty"`  // "singles" or "doubles"
	AgeGroup int    `json:"age_group,omitempty"`
	Code     string `json:"code,omitempty"`
}

// TournamentData is the result of parsing one category page.
type TournamentData struct {
	TournamentName     string               `json:"tournament"`
	Category           string               `json:"category"`
	CategoryInfo       CategoryInfo         `json:"category_info"`
	PageNumber         int                  `json:"page_number"` // 1-indexed
	BracketSize        int                  `json:"bracket_size"`
	Source             string               `json:"source"` // "words" or "text"
	Players            map[int]*Player      `json:"players"`
	Matches            []*Match             `json:"matches"`
	Winner             *Player              `json:"winner,omitempty"`
	FinalStandings     map[string][]*Player `json:"final_standings"`
	Scores             []ScoreSignal        `json:"scores"`
	PointConfirmations []PointConfirmation  `json:"point_confirmations"`
}

// New creates an empty result for one category.
func New(tournamentName, category string, size int) *TournamentData {
	standings := make(map[string][]*Player, len(PlacementLabels))
	for _, label := range PlacementLabels {
		standings[label] = []*Player{}
	}
	return &TournamentData{
		TournamentName: tournamentName,
		Category:       category,
		BracketSize:    size,
		Players:        make(map[int]*Player),
		Matches:        make([]*Match, 0),
		FinalStandings: standings,
		Scores:         make([]ScoreSignal, 0),
	}
}

// AddPlayer stores p unless it is not Valid, its draw number is out of range
// or already taken. The first recognized player for a draw number wins.
func (t *TournamentData) AddPlayer(p *Player) bool {
	if !p.Valid() || p.DrawNo > t.BracketSize {
		return false
	}
	if _, exists := t.Players[p.DrawNo]; exists {
		return false
	}
	t.Players[p.DrawNo] = p
	return true
}

// Player returns the player at drawNo, or nil.
func (t *TournamentData) Player(drawNo int) *Player {
	return t.Players[drawNo]
}

// SortedPlayers returns the players ordered by draw number.
func (t *TournamentData) SortedPlayers() []*Player {
	players := make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].DrawNo < players[j].DrawNo
	})
	return players
}

// PlayerCount returns the number of non-bye players.
func (t *TournamentData) PlayerCount() int {
	n := 0
	for _, p := range t.Players {
		if !p.IsBye {
			n++
		}
	}
	return n
}

// ByeCount returns the number of byes.
func (t *TournamentData) ByeCount() int {
	return len(t.Players) - t.PlayerCount()
}

// SetWinner records p as champion.
func (t *TournamentData) SetWinner(p *Player) {
	t.Winner = p
	t.FinalStandings[PlacementChampion] = []*Player{p}
}

// ErrInvalidBracketSize is returned for draw sizes that are not a power of two.
var ErrInvalidBracketSize = errors.New("bracket size must be a power of two >= 2")

// ValidateSize checks that size is a power of two of at least 2.
func ValidateSize(size int) error {
	if size < 2 || size&(size-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBracketSize, size)
	}
	return nil
}

// FirstRoundPairs returns the fixed round-1 pairings (1,2),(3,4),...,(size-1,size).
func FirstRoundPairs(size int) ([][2]int, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	pairs := make([][2]int, 0, size/2)
	for d := 1; d < size; d += 2 {
		pairs = append(pairs, [2]int{d, d + 1})
	}
	return pairs, nil
}
