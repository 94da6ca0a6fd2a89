// Package segment はナレーション本文を字幕・音声合成に適した長さの
// フレーズ単位に分割するのだ。
package segment

import (
	"strings"
	"unicode"
)

// DefaultMaxChars はフレーズ1つの目安となる最大文字数（ルーン数）です。
const DefaultMaxChars = 40

const (
	quoteOpen  = '「'
	quoteClose = '」'
)

// Segmenter は引用符の開閉を1段だけ追跡しながらテキストを分割します。
// 入れ子の引用符は追跡しません。これは既知の制限であり、内側の「」は
// 単なる文字として扱われるのだ。
type Segmenter struct {
	maxChars int
}

// NewSegmenter は Segmenter を初期化するのだ。maxChars が0以下なら既定値を使う。
func NewSegmenter(maxChars int) *Segmenter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Segmenter{maxChars: maxChars}
}

// Split はテキストをフレーズのリストに分割します。
//
// 分割トリガー:
//   - 引用外の終端句読点（。！？など）
//   - 引用外の弱い区切り（読点・改行）
//   - 引用外で maxChars 以上に達したとき
//   - 引用内でも 1.5×maxChars 以上に達したときは、閉じ引用符の位置で分割
//
// 各フレーズは前後の空白を除去し、句読点だけの候補は破棄します。
// 空白以外の内容があれば結果は空になりません。
func (s *Segmenter) Split(text string) []string {
	hardLimit := s.maxChars * 3 / 2

	var phrases []string
	var buf []rune
	inQuote := false
	forceSplit := false

	flush := func() {
		candidate := strings.TrimSpace(string(buf))
		buf = buf[:0]
		forceSplit = false
		if candidate == "" || isPunctuationOnly(candidate) {
			return
		}
		phrases = append(phrases, candidate)
	}

	for _, r := range text {
		closedNow := false
		switch r {
		case quoteOpen:
			if !inQuote {
				inQuote = true
			}
		case quoteClose:
			if inQuote {
				inQuote = false
				closedNow = true
			}
		}

		buf = append(buf, r)

		if inQuote {
			// 引用の途中では分割せず、上限超過だけ記録しておくのだ
			if len(buf) >= hardLimit {
				forceSplit = true
			}
			continue
		}

		switch {
		case isTerminal(r):
			flush()
		case isWeak(r):
			flush()
		case closedNow && forceSplit:
			flush()
		case len(buf) >= s.maxChars:
			flush()
		}
	}
	flush()

	return phrases
}

// isTerminal は文を終端させる句読点かどうかを判定します。
func isTerminal(r rune) bool {
	switch r {
	case '。', '．', '！', '？', '!', '?', '.':
		return true
	}
	return false
}

// isWeak は弱い区切り（読点・改行）かどうかを判定します。
func isWeak(r rune) bool {
	switch r {
	case '、', '，', ',', '\n':
		return true
	}
	return false
}

// isPunctuationOnly は文字・数字を1つも含まない候補かどうかを判定するのだ。
func isPunctuationOnly(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
