package extract

import (
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/config"
)

// Candidate is a line that may describe one draw position.
type Candidate struct {
	Index int // index in the line source
	Text  string
}

// HeaderIndex returns the first line containing every label, or -1.
// Spaces are ignored so "登録 No" still matches 登録No.
func HeaderIndex(lines []string, labels []string) int {
	if len(labels) == 0 {
		return -1
	}
	for i, line := range lines {
		compact := strings.ReplaceAll(line, " ", "")
		found := true
		for _, label := range labels {
			if !strings.Contains(compact, strings.ReplaceAll(label, " ", "")) {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

// CandidateLines returns the trimmed, non-empty lines following the roster
// header, at most cfg.Lookahead of them, without lines carrying a trailer
// keyword. A page without header yields an empty slice.
func CandidateLines(lines []string, cfg config.SegmentConfig) []Candidate {
	candidates := []Candidate{}

	header := HeaderIndex(lines, cfg.HeaderLabels)
	if header < 0 {
		return candidates
	}

	end := header + 1 + cfg.Lookahead
	if end > len(lines) {
		end = len(lines)
	}

	for i := header + 1; i < end; i++ {
		text := strings.TrimSpace(lines[i])
		if text == "" || containsAny(text, cfg.TrailerKeywords) {
			continue
		}
		candidates = append(candidates, Candidate{Index: i, Text: text})
	}
	return candidates
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
