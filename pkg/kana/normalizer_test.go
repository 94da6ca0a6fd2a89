package kana

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"空白をすべて除去するのだ", "ズンダ モン\tナノダ", "ズンダモンナノダ"},
		{"カタカナ以外を落とすのだ", "トーキョー(東京)abc123", "トーキョー"},
		{"ひらがなも落とすのだ", "ずんだモチ", "モチ"},
		{"長音記号は残すのだ", "スーパー", "スーパー"},
		{"句読点を落とすのだ", "コンニチワ、ミナサン。", "コンニチワミナサン"},
		{"全部不正なら空になるのだ", "hello world!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Clean(tc.input)
			if got != tc.expected {
				t.Errorf("期待値 %q, 実際の値 %q", tc.expected, got)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{"トーキョー", "ずんだ モチ123", "コンニチワ、", "", "abc"}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Cleanが冪等ではないのだ: Clean(%q)=%q, Clean(Clean(%q))=%q", in, once, in, twice)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"トーキョー", "ズンダモン", "ァ", "ヶー"}
	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("%q は有効な読みのはずなのだ", s)
		}
	}

	invalid := []string{"", "とうきょう", "トーキョー東京", "TOKYO", "トー キョー"}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("%q は無効な読みのはずなのだ", s)
		}
	}
}

func TestIsValid_AfterClean(t *testing.T) {
	// Clean を通した結果は、空でない限り必ず検証を通るのだ
	inputs := []string{"トーキョー(東京)", "ずんだモチ", "スーパー マーケット"}
	for _, in := range inputs {
		cleaned := Clean(in)
		if cleaned != "" && !IsValid(cleaned) {
			t.Errorf("Clean(%q)=%q が IsValid を通りませんでした", in, cleaned)
		}
	}
}
