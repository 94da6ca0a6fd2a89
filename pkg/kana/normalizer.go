// Package kana は TTS の発音を確定させるカタカナ読みの正規化と、
// 優先度付きの発音辞書を提供するのだ。
package kana

import (
	"strings"
	"unicode"
)

// 長音記号。カタカナブロックに含まれるが範囲判定から漏れやすいので明示する。
const prolongedSoundMark = 'ー'

// isKatakana は読みとして許可する1文字かどうかを判定します。
// 許可するのは全角カタカナ（ァ〜ヶ）と長音記号だけなのだ。
func isKatakana(r rune) bool {
	return (r >= 'ァ' && r <= 'ヶ') || r == prolongedSoundMark
}

// Clean は読み文字列から空白をすべて除去し、さらにカタカナと長音記号以外の
// 文字をすべて落とします。冪等な操作です: Clean(Clean(x)) == Clean(x)。
func Clean(reading string) string {
	var b strings.Builder
	b.Grow(len(reading))
	for _, r := range reading {
		if unicode.IsSpace(r) {
			continue
		}
		if isKatakana(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid は読みが空でなく、カタカナと長音記号だけで構成されているかを返します。
func IsValid(reading string) bool {
	if reading == "" {
		return false
	}
	for _, r := range reading {
		if !isKatakana(r) {
			return false
		}
	}
	return true
}
