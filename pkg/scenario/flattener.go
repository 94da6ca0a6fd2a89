// Package scenario は階層化された台本をグローバル連番付きのフレーズ列に
// 平坦化し、シーン範囲によるフィルタリングを提供するのだ。
package scenario

import (
	"log/slog"

	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/segment"
)

// Flattener はセクション・ナレーションの階層を1本のフレーズ列へ変換します。
type Flattener struct {
	seg      *segment.Segmenter
	personas domain.PersonasMap
}

// NewFlattener は Flattener を初期化するのだ。
func NewFlattener(maxChars int, personas domain.PersonasMap) *Flattener {
	return &Flattener{
		seg:      segment.NewSegmenter(maxChars),
		personas: personas,
	}
}

// Flatten はフィルタ前の台本全体を左から右へ一度だけ走査し、
// OriginalIndex を 0..N-1 で採番したフレーズ列を返します。
//
// この連番は音声ファイル命名の唯一のキーであり、シーン範囲でフィルタしても
// 決して振り直されません。再開された実行が既存ファイルを再合成したり
// 改名したりしないための要なのだ。
//
// ナレーションの本文と読みは同じ分割器にかけ、断片数が一致したときだけ
// 位置で対応付けます。一致しないときは読み全体を先頭フレーズに割り当て、
// 残りは表示テキストから合成します（DESIGN.md に記録した決定）。
func (f *Flattener) Flatten(script *domain.Script) []domain.Phrase {
	var phrases []domain.Phrase
	index := 0

	for sectionIndex, section := range script.Sections {
		for _, turn := range section.Narrations {
			texts := f.seg.Split(turn.Text)
			readings := f.pairReadings(texts, turn.Reading)

			personaName := f.resolvePersonaName(turn.PersonaID)

			for i, text := range texts {
				phrases = append(phrases, domain.Phrase{
					Text:          text,
					Reading:       readings[i],
					SectionIndex:  sectionIndex,
					OriginalIndex: index,
					PersonaID:     turn.PersonaID,
					PersonaName:   personaName,
				})
				index++
			}
		}
	}

	return phrases
}

// pairReadings は読みを本文と同じ規則で分割し、断片数が一致すれば位置対応、
// 一致しなければ全体を先頭に寄せるのだ。
func (f *Flattener) pairReadings(texts []string, reading string) []string {
	readings := make([]string, len(texts))
	if len(texts) == 0 || reading == "" {
		return readings
	}

	pieces := f.seg.Split(reading)
	if len(pieces) == len(texts) {
		copy(readings, pieces)
		return readings
	}

	slog.Debug("読みの断片数が本文と一致しないため先頭へ寄せるのだ",
		"text_pieces", len(texts), "reading_pieces", len(pieces))
	readings[0] = reading
	return readings
}

// resolvePersonaName は話者IDから表示名を引きます。
// 未設定のIDはここでは警告に留め、IDをフレーズへ保存したまま下流に委ねるのだ。
func (f *Flattener) resolvePersonaName(personaID string) string {
	if personaID == "" {
		return ""
	}
	if p, ok := f.personas[personaID]; ok {
		return p.Name
	}
	slog.Warn("未設定の話者IDが台本に含まれているのだ", "persona_id", personaID)
	return ""
}
