package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
)

var ageGroupPattern = regexp.MustCompile(`(\d+)\s*歳以上`)

// TournamentName returns the first line containing every keyword, or unknown.
func TournamentName(lines []string, keywords []string, unknown string) string {
	if len(keywords) == 0 {
		return unknown
	}
	for _, line := range lines {
		matched := true
		for _, k := range keywords {
			if !strings.Contains(line, k) {
				matched = false
				break
			}
		}
		if matched {
			return strings.TrimSpace(line)
		}
	}
	return unknown
}

// ParseCategoryInfo derives gender, event and age group from a category label.
// The code is only set when all three are known, e.g. 女子ダブルス 70歳以上 -> ld70.
func ParseCategoryInfo(category string) bracket.CategoryInfo {
	category = Normalize(category)
	var info bracket.CategoryInfo
	var gender, event string

	switch {
	case strings.Contains(category, "男子"):
		info.Gender, gender = "male", "g"
	case strings.Contains(category, "女子"):
		info.Gender, gender = "female", "l"
	}

	switch {
	case strings.Contains(category, "シングルス"):
		info.Event, event = "singles", "s"
	case strings.Contains(category, "ダブルス"):
		info.Event, event = "doubles", "d"
	}

	if m := ageGroupPattern.FindStringSubmatch(category); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			info.AgeGroup = age
		}
	}

	if gender != "" && event != "" && info.AgeGroup > 0 {
		info.Code = fmt.Sprintf("%s%s%d", gender, event, info.AgeGroup)
	}
	return info
}

var prefectures = []string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県",
	"岐阜県", "静岡県", "愛知県", "三重県",
	"滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県",
	"鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県",
	"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

// prefectureStem drops the 都/府/県 suffix. 北海道 is kept whole.
func prefectureStem(name string) string {
	for _, suffix := range []string{"都", "府", "県"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// Prefecture returns the first prefecture whose stem appears in club, or "".
func Prefecture(club string) string {
	if club == "" {
		return ""
	}
	for _, pref := range prefectures {
		if strings.Contains(club, prefectureStem(pref)) {
			return pref
		}
	}
	return ""
}
