package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
)

// nameChars is the character class allowed in a name token: CJK ideographs
// with the 々 iteration mark, hiragana, katakana and halfwidth/fullwidth forms.
const nameChars = `[\x{4e00}-\x{9fff}\x{3005}\x{3040}-\x{309f}\x{30a0}-\x{30ff}\x{ff00}-\x{ffef}]`

// space also matches Unicode space separators such as NBSP, which RE2's \s does not.
const space = `[\s\p{Zs}]`

const seedLabel = `(?:シード|[Ss]eed)?` + space + `*`

var (
	drawNumberPattern   = regexp.MustCompile(`^` + space + `*(\d+)` + space + `+`)
	byePattern          = regexp.MustCompile(`(?i)bye`)
	registrationPattern = regexp.MustCompile(`([GL]\d{7})(?:\D|$)`)

	// Tried in order; the first one that matches provides the seed.
	seedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|` + space + `)` + seedLabel + `(1|2)(?:` + space + `|$)`),
		regexp.MustCompile(`(?:^|` + space + `)` + seedLabel + `(\d+[〜～]\d+)(?:` + space + `|$)`),
		regexp.MustCompile(`(?:^|` + space + `)` + seedLabel + `(\d+-\d+)(?:` + space + `|$)`),
	}

	namePattern      = regexp.MustCompile(`(` + nameChars + `{1,5})` + space + `+(` + nameChars + `{1,5})`)
	nameStartPattern = regexp.MustCompile(`^` + nameChars + `{2,5}`)
	strayNamePattern = regexp.MustCompile(space + `+` + nameChars + `{2,5}` + space + `+` + nameChars + `{1,5}$`)
)

// DrawNumber reads the leading draw number of a line.
func DrawNumber(line string) (int, bool) {
	m := drawNumberPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractPlayer parses one roster line for draw position drawNo. The line is
// consumed left to right: draw number, bye marker, registration number, seed,
// name and finally club. A line whose draw number differs from drawNo or that
// has no recognizable name is not a player line.
func ExtractPlayer(drawNo int, line string) (*bracket.Player, bool) {
	loc := drawNumberPattern.FindStringSubmatchIndex(line)
	if loc == nil || line[loc[2]:loc[3]] != strconv.Itoa(drawNo) {
		return nil, false
	}
	rest := line[loc[1]:]

	if byePattern.MatchString(rest) {
		return bracket.NewBye(drawNo), true
	}

	p := &bracket.Player{DrawNo: drawNo}

	if m := registrationPattern.FindStringSubmatchIndex(rest); m != nil {
		p.RegistrationNo = rest[m[2]:m[3]]
		rest = rest[:m[2]] + " " + rest[m[3]:]
	}

	for _, re := range seedPatterns {
		if m := re.FindStringSubmatchIndex(rest); m != nil {
			p.Seed = rest[m[2]:m[3]]
			rest = rest[:m[0]] + " " + rest[m[1]:]
			break
		}
	}

	m := namePattern.FindStringSubmatchIndex(rest)
	if m == nil {
		return nil, false
	}
	p.Name = rest[m[2]:m[3]] + " " + rest[m[4]:m[5]]

	p.Club = extractClub(rest[m[1]:])
	p.Prefecture = Prefecture(p.Club)
	return p, true
}

// extractClub takes the words after the name up to the next name-shaped pair,
// which is usually a doubles partner or a later-round bracket entry.
func extractClub(s string) string {
	words := strings.Fields(s)
	var club []string
	for i, w := range words {
		if i > 0 && nameStartPattern.MatchString(w) &&
			i+1 < len(words) && nameStartPattern.MatchString(words[i+1]) {
			break
		}
		club = append(club, w)
	}

	text := strings.Join(club, " ")
	text = strayNamePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
