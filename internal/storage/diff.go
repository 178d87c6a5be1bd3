package storage

import (
	"fmt"
	"sort"
)

// Change kinds reported by Diff.
const (
	ChangeNew    = "new"
	ChangeName   = "name"
	ChangeClub   = "club"
	ChangeSeed   = "seed"
	ChangeScore  = "score"
	ChangeWinner = "winner"
)

// Change is one difference between a stored result and a fresh parse.
type Change struct {
	Key        string `json:"key"` // "draw:<n>", "match:<a>-<b>" or "winner"
	ChangeType string `json:"change_type"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func drawKey(n int) string {
	return fmt.Sprintf("draw:%d", n)
}

// Diff compares a fresh result against the previously stored one. A nil
// previous result reports every occupied draw position as new.
func Diff(previous, current *Result) []Change {
	if previous == nil {
		previous = &Result{}
	}
	var changes []Change

	prevPlayers := make(map[int]PlayerRecord, len(previous.Players))
	for _, p := range previous.Players {
		prevPlayers[p.DrawNo] = p
	}

	for _, cur := range current.Players {
		prev, ok := prevPlayers[cur.DrawNo]
		if !ok {
			changes = append(changes, Change{
				Key:        drawKey(cur.DrawNo),
				ChangeType: ChangeNew,
				NewValue:   displayName(cur),
			})
			continue
		}
		changes = append(changes, detectPlayerChanges(prev, cur)...)
	}

	prevMatches := make(map[[2]int]MatchRecord, len(previous.Matches))
	for _, m := range previous.Matches {
		prevMatches[[2]int{m.Player1DrawNo, m.Player2DrawNo}] = m
	}
	for _, cur := range current.Matches {
		prev := prevMatches[[2]int{cur.Player1DrawNo, cur.Player2DrawNo}]
		if deref(prev.Score) != deref(cur.Score) {
			changes = append(changes, Change{
				Key:        fmt.Sprintf("match:%d-%d", cur.Player1DrawNo, cur.Player2DrawNo),
				ChangeType: ChangeScore,
				OldValue:   deref(prev.Score),
				NewValue:   deref(cur.Score),
			})
		}
	}

	if deref(previous.Winner) != deref(current.Winner) {
		changes = append(changes, Change{
			Key:        "winner",
			ChangeType: ChangeWinner,
			OldValue:   deref(previous.Winner),
			NewValue:   deref(current.Winner),
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Key < changes[j].Key
	})
	return changes
}

func displayName(p PlayerRecord) string {
	if p.IsBye {
		return "bye"
	}
	return deref(p.Name)
}

func detectPlayerChanges(prev, cur PlayerRecord) []Change {
	var changes []Change
	key := drawKey(cur.DrawNo)

	if displayName(prev) != displayName(cur) {
		changes = append(changes, Change{Key: key, ChangeType: ChangeName, OldValue: displayName(prev), NewValue: displayName(cur)})
	}
	if deref(prev.Club) != deref(cur.Club) {
		changes = append(changes, Change{Key: key, ChangeType: ChangeClub, OldValue: deref(prev.Club), NewValue: deref(cur.Club)})
	}
	if deref(prev.Seed) != deref(cur.Seed) {
		changes = append(changes, Change{Key: key, ChangeType: ChangeSeed, OldValue: deref(prev.Seed), NewValue: deref(cur.Seed)})
	}
	return changes
}
