package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// The result sheets embed fonts that map some ideographs to Kangxi radical or
// CJK radical supplement code points (⼦ instead of 子). substitutions holds the
// explicit fixes; the whole Kangxi radicals block is added in init through NFKC.
var substitutions = map[rune]rune{
	'⼦':      '子',
	'⼤':      '大',
	'⻄':      '西',
	'⼿':      '手',
}

func init() {
	for r := rune(0x2F00); r <= 0x2FD5; r++ {
		if _, ok := substitutions[r]; ok {
			continue
		}
		mapped := []rune(norm.NFKC.String(string(r)))
		if len(mapped) == 1 && mapped[0] != r {
			substitutions[r] = mapped[0]
		}
	}
}

// Normalize replaces corrupted code points with the characters they stand for
// and every Unicode space separator (ideographic space, NBSP) with ' '.
// Category labels and page text must both pass through it before comparison.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if sub, ok := substitutions[r]; ok {
			return sub
		}
		if r != ' ' && unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}, s)
}
