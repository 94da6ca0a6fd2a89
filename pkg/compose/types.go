// Package compose はタイミング済みのフレーズ列と素材ファイルから、
// 外部レンダラーへ渡す合成ディスクリプタを組み立てるのだ。
package compose

import "github.com/shouni/go-movie-kit/pkg/domain"

// CompositionDescriptor はレンダラーに渡す最終的な描画計画です。
// 毎回の実行で冪等に再構築されます。
type CompositionDescriptor struct {
	RunID         string  `json:"run_id"`
	Title         string  `json:"title"`
	FPS           int     `json:"fps"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	TotalDuration float64 `json:"total_duration"`

	Cues []Cue `json:"cues"`

	Transition *TransitionConfig `json:"transition,omitempty"`
	Background *BackgroundConfig `json:"background,omitempty"`
	BGM        *BGMConfig        `json:"bgm,omitempty"`
}

// Cue は1フレーズぶんの描画指示（字幕・音声・スライド・話者表現）です。
// 素材パスはすべてディスクリプタの置き場所からの相対パスなのだ。
type Cue struct {
	Text          string  `json:"text"`
	AudioPath     string  `json:"audio_path"`
	SlidePath     string  `json:"slide_path,omitempty"`
	SectionIndex  int     `json:"section_index"`
	OriginalIndex int     `json:"original_index"`
	StartTime     float64 `json:"start_time"`
	Duration      float64 `json:"duration"`

	Persona *PersonaPresentation `json:"persona,omitempty"`

	// SectionBackground はこのキューのセクションだけ背景を差し替える場合のパス。
	SectionBackground string `json:"section_background,omitempty"`
}

// PersonaPresentation は話者の画面上の見せ方です。
type PersonaPresentation struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	SubtitleColor string                  `json:"subtitle_color"`
	Position      string                  `json:"position"`
	Animation     string                  `json:"animation,omitempty"`
	Images        *domain.CharacterImages `json:"images,omitempty"`
}

// TransitionConfig はセクション間のトランジション設定です。
type TransitionConfig struct {
	Type           string `json:"type"`
	DurationFrames int    `json:"duration_frames"`
	Curve          string `json:"curve,omitempty"` // イージングカーブ名
}

// BackgroundConfig は全体の背景設定です。
// 動画背景の場合、LoopFrames にはネイティブの1周期ぶんの出力フレーム数が入り、
// ループの途中で不自然に先頭へ戻らないようにするのだ。
type BackgroundConfig struct {
	Type       string `json:"type"` // image / video / color
	Path       string `json:"path,omitempty"`
	Fit        string `json:"fit,omitempty"`
	LoopFrames int    `json:"loop_duration_frames,omitempty"`
}

// BGMConfig は背景音楽の設定です。
type BGMConfig struct {
	Path    string  `json:"path"`
	Volume  float64 `json:"volume"`
	FadeIn  float64 `json:"fade_in,omitempty"`
	FadeOut float64 `json:"fade_out,omitempty"`
	Loop    bool    `json:"loop"`
}
