// Package timeline はフレーズ列への開始時刻の割り当てと、
// 話者の画面上の立ち位置の決定を担うのだ。どちらも純粋な計算で、
// 同じ入力には必ず同じ出力を返します。
package timeline

import "github.com/shouni/go-movie-kit/pkg/domain"

// PauseConfig はフレーズ間に挿入する無音の長さ（秒）です。
type PauseConfig struct {
	Initial float64 // 最初のフレーズの前
	Slide   float64 // セクション境界のフレーズの前
	Speaker float64 // 話者が切り替わるフレーズの前
	Ending  float64 // 最後のフレーズの後（フレーズには保存しない）
}

// AssignTimes は合成済みの長さを持つフレーズ列へ開始時刻を書き込み、
// エンディングポーズまで含めた総尺（秒）を返します。
//
// 各フレーズの開始時刻 = それまでの長さの累計 + 直前に適用されるポーズ。
// ポーズ自体は累計に含めない。先頭には Initial、セクション境界には Slide、
// 話者の切り替わりには Speaker を適用します。
//
// セクション境界と話者切り替わりが同じフレーズで重なった場合は Slide だけを
// 適用し、加算はしません。観測された挙動からは確定できなかったため、
// この規則を採用して専用テストで固定しているのだ。
func AssignTimes(phrases []domain.Phrase, pauses PauseConfig) float64 {
	if len(phrases) == 0 {
		return 0
	}

	cumulative := 0.0
	for i := range phrases {
		pause := pauses.Initial
		if i > 0 {
			pause = pauseBefore(&phrases[i-1], &phrases[i], pauses)
		}
		phrases[i].StartTime = cumulative + pause
		cumulative += phrases[i].Duration
	}

	last := &phrases[len(phrases)-1]
	return last.StartTime + last.Duration + pauses.Ending
}

// pauseBefore は連続する2フレーズの間に挿入するポーズを決めるのだ。
func pauseBefore(prev, next *domain.Phrase, pauses PauseConfig) float64 {
	if next.SectionIndex != prev.SectionIndex {
		return pauses.Slide
	}
	if next.PersonaID != prev.PersonaID {
		return pauses.Speaker
	}
	return 0
}
