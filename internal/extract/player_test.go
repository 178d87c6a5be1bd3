package extract

import (
	"testing"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
)

func TestDrawNumber(t *testing.T) {
	tests := []struct {
		line   string
		want   int
		wantOK bool
	}{
		{"12  田中 太郎", 12, true},
		{"  3 bye", 3, true},
		{"12\u00a0田中 太郎", 12, true},
		{"3", 0, false},
		{"田中 太郎", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := DrawNumber(tt.line)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DrawNumber(%q) = %d, %v, want %d, %v", tt.line, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractPlayer(t *testing.T) {
	tests := []struct {
		name   string
		drawNo int
		line   string
		want   *bracket.Player
	}{
		{
			name:   "labelled top seed",
			drawNo: 3,
			line:   "3  シード2  G1234567  田中 太郎  ○○クラブ",
			want: &bracket.Player{
				DrawNo: 3, RegistrationNo: "G1234567", Seed: "2",
				Name: "田中 太郎", Club: "○○クラブ",
			},
		},
		{
			name:   "bye",
			drawNo: 7,
			line:   "7  bye",
			want:   &bracket.Player{DrawNo: 7, IsBye: true},
		},
		{
			name:   "bye upper case",
			drawNo: 8,
			line:   "8 BYE",
			want:   &bracket.Player{DrawNo: 8, IsBye: true},
		},
		{
			name:   "range seed with prefecture",
			drawNo: 9,
			line:   "9 L7654321 3〜4 佐藤 花子 大阪テニスクラブ",
			want: &bracket.Player{
				DrawNo: 9, RegistrationNo: "L7654321", Seed: "3〜4",
				Name: "佐藤 花子", Club: "大阪テニスクラブ", Prefecture: "大阪府",
			},
		},
		{
			name:   "hyphen seed",
			drawNo: 13,
			line:   "13 G0000001 5-8 山田 一郎 横浜クラブ",
			want: &bracket.Player{
				DrawNo: 13, RegistrationNo: "G0000001", Seed: "5-8",
				Name: "山田 一郎", Club: "横浜クラブ",
			},
		},
		{
			name:   "english seed label",
			drawNo: 1,
			line:   "1 Seed1 G1111111 鈴木 一郎 クラブ",
			want: &bracket.Player{
				DrawNo: 1, RegistrationNo: "G1111111", Seed: "1",
				Name: "鈴木 一郎", Club: "クラブ",
			},
		},
		{
			name:   "club stops at next name pair",
			drawNo: 2,
			line:   "2 田中 太郎 東京クラブ 鈴木 一郎",
			want: &bracket.Player{
				DrawNo: 2, Name: "田中 太郎", Club: "東京クラブ", Prefecture: "東京都",
			},
		},
		{
			name:   "iteration mark and fullwidth letters",
			drawNo: 4,
			line:   "4 佐々木 健 千葉ＴＣ",
			want: &bracket.Player{
				DrawNo: 4, Name: "佐々木 健", Club: "千葉ＴＣ", Prefecture: "千葉県",
			},
		},
		{
			name:   "registration followed by digit is not captured",
			drawNo: 5,
			line:   "5 G12345678 中村 健 クラブ",
			want: &bracket.Player{
				DrawNo: 5, Name: "中村 健", Club: "クラブ",
			},
		},
		{
			name:   "non-breaking spaces",
			drawNo: 3,
			line:   "3\u00a0\u00a0田中 太郎  クラブ",
			want: &bracket.Player{
				DrawNo: 3, Name: "田中 太郎", Club: "クラブ",
			},
		},
		{
			name:   "ideographic spaces",
			drawNo: 10,
			line:   "10　シード1　田中　太郎　クラブ",
			want: &bracket.Player{
				DrawNo: 10, Seed: "1", Name: "田中 太郎", Club: "クラブ",
			},
		},
		{
			name:   "no club",
			drawNo: 6,
			line:   "6 G2222222 高橋 誠",
			want: &bracket.Player{
				DrawNo: 6, RegistrationNo: "G2222222", Name: "高橋 誠",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPlayer(tt.drawNo, tt.line)
			if !ok {
				t.Fatalf("ExtractPlayer(%d, %q) not recognized", tt.drawNo, tt.line)
			}
			if *got != *tt.want {
				t.Errorf("ExtractPlayer() = %+v, want %+v", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("player %+v is not valid", got)
			}
		})
	}
}

func TestExtractPlayer_NotRecognized(t *testing.T) {
	tests := []struct {
		name   string
		drawNo int
		line   string
	}{
		{"draw number mismatch", 4, "3 田中 太郎 クラブ"},
		{"no draw number", 3, "田中 太郎 クラブ"},
		{"no name", 3, "3 G1234567"},
		{"single name token", 3, "3 G1234567 田中"},
		{"score line", 6, "6 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p, ok := ExtractPlayer(tt.drawNo, tt.line); ok {
				t.Errorf("ExtractPlayer(%d, %q) = %+v, want not recognized", tt.drawNo, tt.line, p)
			}
		})
	}
}
