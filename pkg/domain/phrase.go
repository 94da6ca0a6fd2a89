package domain

// Phrase はナレーションの最小単位（本文 + 読み + タイミング）です。
//
// OriginalIndex はフィルタ前の台本全体に対して一度だけ採番されるグローバル連番で、
// 音声ファイルの命名に使う唯一のキーです。シーン範囲でフィルタしても振り直されない
// ため、再実行時に既存の音声ファイルをそのまま再利用できるのだ。
type Phrase struct {
	Text          string  `json:"text"`
	Reading       string  `json:"reading"`
	Duration      float64 `json:"duration"`   // 合成後に秒単位で埋められる
	StartTime     float64 `json:"start_time"` // TimingCalculator が計算する
	SectionIndex  int     `json:"section_index"`
	OriginalIndex int     `json:"original_index"`
	PersonaID     string  `json:"persona_id,omitempty"`
	PersonaName   string  `json:"persona_name,omitempty"`
}

// SynthesisText は TTS へ渡すテキストを返します。
// カタカナ読みがあればそれを優先し、なければ表示テキストで代用するのだ。
func (p Phrase) SynthesisText() string {
	if p.Reading != "" {
		return p.Reading
	}
	return p.Text
}
