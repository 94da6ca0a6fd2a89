package config

import (
	"fmt"
	"os"

	"github.com/shouni/go-movie-kit/pkg/domain"

	"github.com/pelletier/go-toml/v2"
)

// 描画プロファイルのデフォルト値なのだ
const (
	DefaultFPS    = 30
	DefaultWidth  = 1920
	DefaultHeight = 1080

	DefaultInitialPause = 1.0
	DefaultSlidePause   = 1.0
	DefaultSpeakerPause = 0.5
	DefaultEndingPause  = 2.0
)

// RenderProfile は動画の描画パラメータ一式（TOML）です。
// CLI からは --profile で渡され、省略されたフィールドはデフォルトで埋められるのだ。
type RenderProfile struct {
	Title  string `toml:"title"`
	FPS    int    `toml:"fps"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	Pauses     PauseProfile       `toml:"pauses"`
	Transition *TransitionProfile `toml:"transition"`
	Background *BackgroundProfile `toml:"background"`
	BGM        *BGMProfile        `toml:"bgm"`
}

// PauseProfile はフレーズ間に挿入する無音の長さ（秒）です。
type PauseProfile struct {
	Initial float64 `toml:"initial"`
	Slide   float64 `toml:"slide"`
	Speaker float64 `toml:"speaker"`
	Ending  float64 `toml:"ending"`
}

// TransitionProfile はセクション切り替え時のトランジション指定です。
type TransitionProfile struct {
	Type           string `toml:"type"`
	DurationFrames int    `toml:"duration_frames"`
	Curve          string `toml:"curve"`
}

// BackgroundProfile は全編共通の背景指定です。セクション単位の上書きは台本側で行うのだ。
type BackgroundProfile struct {
	Type string `toml:"type"` // image / video
	Path string `toml:"path"`
	Fit  string `toml:"fit"`
}

// BGMProfile は背景音楽の指定です。音量は 0.0〜1.0 なのだ。
type BGMProfile struct {
	Path    string  `toml:"path"`
	Volume  float64 `toml:"volume"`
	FadeIn  float64 `toml:"fade_in"`
	FadeOut float64 `toml:"fade_out"`
	Loop    bool    `toml:"loop"`
}

// DefaultProfile はデフォルト値で埋めた描画プロファイルを返すのだ。
func DefaultProfile() *RenderProfile {
	return &RenderProfile{
		FPS:    DefaultFPS,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Pauses: PauseProfile{
			Initial: DefaultInitialPause,
			Slide:   DefaultSlidePause,
			Speaker: DefaultSpeakerPause,
			Ending:  DefaultEndingPause,
		},
	}
}

// LoadProfile は TOML ファイルから描画プロファイルを読み込みます。
// パスが空ならデフォルトをそのまま返し、省略されたフィールドはデフォルトで補うのだ。
func LoadProfile(path string) (*RenderProfile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("描画プロファイルの読み込みに失敗したのだ (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("描画プロファイルのデコードに失敗したのだ (%s): %w", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate は描画パラメータが妥当か検証します。
func (p *RenderProfile) Validate() error {
	if p.FPS <= 0 {
		return &domain.InputValidationError{Field: "fps", Reason: "1以上で指定してほしいのだ"}
	}
	if p.Width <= 0 || p.Height <= 0 {
		return &domain.InputValidationError{Field: "width/height", Reason: "1以上で指定してほしいのだ"}
	}
	if p.Pauses.Initial < 0 || p.Pauses.Slide < 0 || p.Pauses.Speaker < 0 || p.Pauses.Ending < 0 {
		return &domain.InputValidationError{Field: "pauses", Reason: "負の値は指定できないのだ"}
	}
	if p.BGM != nil && (p.BGM.Volume < 0 || p.BGM.Volume > 1) {
		return &domain.InputValidationError{Field: "bgm.volume", Reason: "0.0〜1.0で指定してほしいのだ"}
	}
	if p.Background != nil {
		switch p.Background.Type {
		case "image", "video":
		default:
			return &domain.InputValidationError{
				Field:  "background.type",
				Reason: fmt.Sprintf("未知の背景タイプです: %s", p.Background.Type),
			}
		}
	}
	return nil
}
